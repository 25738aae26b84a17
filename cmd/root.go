package cmd

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnsys"
	"github.com/lmittmann/tint"
	hydromon "github.com/oceandata/hydromon/pkg"
	"github.com/oceandata/hydromon/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed hydromon.yaml
var configText string

var (
	opts []config.Option
)

type cfgData struct {
	DataDir      string
	ProcessedDir string
	FishFile     string
	JobsNum      int
	BatchSize    int
	PgHost       string
	PgPort       int
	PgUser       string
	PgPass       string
	PgDB         string
	HTTPAddr     string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hydromon",
	Short: "Normalizes water-quality CSV dumps and serves them over HTTP",
	Long: `hydromon converts a directory tree of raw water-quality CSV files
into a normalized combined dataset, loads the dataset together with fish
measurements into a PostgreSQL database, and serves the result through a
JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			slog.Error("Cannot get flag", "error", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n",
				hydromon.Version, hydromon.Build)
			os.Exit(0)
		}

		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.DateTime,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var err error
	var homeDir, cfgDir string
	configFile := "hydromon"

	homeDir, err = os.UserHomeDir()
	if err != nil {
		slog.Error("Cannot find home dir", "error", err)
		os.Exit(1)
	}
	cfgDir = filepath.Join(homeDir, ".config")

	// Search config in home directory with name "hydromon" (without
	// extension).
	viper.AddConfigPath(cfgDir)
	viper.SetConfigName(configFile)

	_ = viper.BindEnv("PgHost", "DB_HOST")
	_ = viper.BindEnv("PgPort", "DB_PORT")
	_ = viper.BindEnv("PgUser", "DB_USER")
	_ = viper.BindEnv("PgPass", "DB_PASSWORD")
	_ = viper.BindEnv("PgDB", "DB_NAME")
	_ = viper.BindEnv("HTTPAddr", "HTTP_ADDR")

	configPath := filepath.Join(cfgDir, fmt.Sprintf("%s.yaml", configFile))
	touchConfigFile(configPath)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Config file hydromon.yaml not found", "error", err)
		os.Exit(1)
	}
	getOpts()
}

// getOpts imports data from the configuration file. Some of the settings
// can be overriden by environment variables.
func getOpts() []config.Option {
	cfg := cfgData{}
	err := viper.Unmarshal(&cfg)
	if err != nil {
		slog.Error("Cannot unmarshal config file", "error", err)
	}

	if cfg.DataDir != "" {
		opts = append(opts, config.OptDataDir(cfg.DataDir))
	}
	if cfg.ProcessedDir != "" {
		opts = append(opts, config.OptProcessedDir(cfg.ProcessedDir))
	}
	if cfg.FishFile != "" {
		opts = append(opts, config.OptFishFile(cfg.FishFile))
	}
	if cfg.JobsNum != 0 {
		opts = append(opts, config.OptJobsNum(cfg.JobsNum))
	}
	if cfg.BatchSize != 0 {
		opts = append(opts, config.OptBatchSize(cfg.BatchSize))
	}
	if cfg.PgHost != "" {
		opts = append(opts, config.OptPgHost(cfg.PgHost))
	}
	if cfg.PgPort != 0 {
		opts = append(opts, config.OptPgPort(cfg.PgPort))
	}
	if cfg.PgUser != "" {
		opts = append(opts, config.OptPgUser(cfg.PgUser))
	}
	if cfg.PgPass != "" {
		opts = append(opts, config.OptPgPass(cfg.PgPass))
	}
	if cfg.PgDB != "" {
		opts = append(opts, config.OptPgDB(cfg.PgDB))
	}
	if cfg.HTTPAddr != "" {
		opts = append(opts, config.OptHTTPAddr(cfg.HTTPAddr))
	}
	return opts
}

// touchConfigFile checks if config file exists, and if not, it gets
// created.
func touchConfigFile(configPath string) {
	fileExists, _ := gnsys.FileExists(configPath)
	if fileExists {
		return
	}

	slog.Info("Creating config file", "path", configPath)
	createConfig(configPath)
}

// createConfig creates config file.
func createConfig(path string) {
	err := gnsys.MakeDir(filepath.Dir(path))
	if err != nil {
		slog.Error("Cannot create config dir", "error", err)
		os.Exit(1)
	}

	err = os.WriteFile(path, []byte(configText), 0644)
	if err != nil {
		slog.Error("Cannot write to config file", "error", err)
		os.Exit(1)
	}
}
