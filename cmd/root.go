package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/procwing/procwing/models"
	"github.com/procwing/procwing/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// ErrNoTasksFound is returned when an interactive selection is attempted
	// but no tasks are available.
	ErrNoTasksFound = errors.New("no tasks found matching your criteria")
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "procwing",
	Short: "ProcWing manages persistent processes built from dependency-linked tasks.",
	Long: `ProcWing tracks named processes: ordered, dependency-linked tasks with
schedules and status lifecycles, persisted per agent in a crash-safe file
store that is safe under concurrent access from multiple callers.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.procwing.yaml or ./.procwing.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringP("agent", "a", "", "agent partition to operate on")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("agent", rootCmd.PersistentFlags().Lookup("agent"))
}

// GetStore initializes and returns the process store for the configured
// agent partition.
func GetStore() (store.ProcessStore, error) {
	s := store.NewFileProcessStore()
	cfg := GetConfig()

	err := s.Initialize(map[string]string{
		"dataDir":        cfg.Data.Dir,
		"agentId":        cfg.Agent,
		"dataFileFormat": cfg.Data.Format,
		"lockTimeoutMs":  strconv.FormatInt(cfg.Lock.TimeoutMs, 10),
		"lockStaleMs":    strconv.FormatInt(cfg.Lock.StaleMs, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store for agent %s: %w", cfg.Agent, err)
	}
	return s, nil
}

// selectTaskInteractive presents a prompt to the user to select a task from
// a process, optionally filtered.
func selectTaskInteractive(proc models.ProcessDescriptor, filterFn func(models.ProcessTask) bool, label string) (models.ProcessTask, error) {
	var tasks []models.ProcessTask
	for _, t := range proc.Tasks {
		if filterFn == nil || filterFn(t) {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		return models.ProcessTask{}, ErrNoTasksFound
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   `> {{ .Label | cyan }} ({{ .Status }})`,
		Inactive: `  {{ .Label | faint }} ({{ .Status }})`,
		Selected: `{{ "✔" | green }} {{ .Label | faint }}`,
	}

	searcher := func(input string, index int) bool {
		t := tasks[index]
		return strings.Contains(strings.ToLower(t.Label), strings.ToLower(input))
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     tasks,
		Templates: templates,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return models.ProcessTask{}, err
	}
	return tasks[i], nil
}
