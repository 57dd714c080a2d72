package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"apicheck.dev/pkg/apicheck/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "apicheck"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	excludeFlagName   = "exclude"
	classpathFlagName = "classpath"
	parallelFlagName  = "parallel"

	classpathConfigKey = "classpath"
	excludeConfigKey   = "paths.exclude"

	minSeverityKey            = "check.min_severity"
	includeCodesKey           = "check.include_codes"
	excludeCodesKey           = "check.exclude_codes"
	skipDeprecatedKey         = "check.skip_deprecated"
	deprecationAnnotationsKey = "check.deprecation_annotations"
	adapterAnnotationsKey     = "check.adapter_annotations"
	externalAnnotationsKey    = "check.external_invocation_annotations"
	checkParallelKey          = "check.parallel"
	failOnErrorKey            = "check.fail_on_error"
	failOnWarningKey          = "check.fail_on_warning"
	textOutputKey             = "check.text_output"
	xmlOutputKey              = "check.xml_output"

	snapshotIncludeKey  = "snapshot.include"
	snapshotExcludeKey  = "snapshot.exclude"
	snapshotOutputKey   = "snapshot.output"
	snapshotParallelKey = "snapshot.parallel"

	defaultMinSeverity      = "warning"
	defaultSkipDeprecated   = true
	defaultParallel         = 1
	defaultFailOnError      = true
	defaultFailOnWarning    = false
	defaultSnapshotOutput   = "apicheck-snapshot.yaml"
	defaultSnapshotParallel = 4

	envPrefix = "APICHECK"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".apicheck.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func setDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(classpathConfigKey, []string{})
	viper.SetDefault(excludeConfigKey, []string{})

	viper.SetDefault(minSeverityKey, defaultMinSeverity)
	viper.SetDefault(includeCodesKey, []int{})
	viper.SetDefault(excludeCodesKey, []int{})
	viper.SetDefault(skipDeprecatedKey, defaultSkipDeprecated)
	viper.SetDefault(deprecationAnnotationsKey, []string{domain.DefaultDeprecationAnnotation})
	viper.SetDefault(adapterAnnotationsKey, []string{})
	viper.SetDefault(externalAnnotationsKey, []string{})
	viper.SetDefault(checkParallelKey, defaultParallel)
	viper.SetDefault(failOnErrorKey, defaultFailOnError)
	viper.SetDefault(failOnWarningKey, defaultFailOnWarning)
	viper.SetDefault(textOutputKey, "")
	viper.SetDefault(xmlOutputKey, "")

	viper.SetDefault(snapshotIncludeKey, []string{})
	viper.SetDefault(snapshotExcludeKey, []string{})
	viper.SetDefault(snapshotOutputKey, defaultSnapshotOutput)
	viper.SetDefault(snapshotParallelKey, defaultSnapshotParallel)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger installs the global slog logger writing to a rotated file.
// It logs at the configured level, or at Debug when verbose is set.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
