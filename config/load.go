package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFailedToSetDefaults = errors.New("error occurred while setting defaults")
	ErrConfigPath                = errors.New("config path error")
	ErrConfigFailedToDump        = errors.New("failed to dump config")
)

// Load builds the configuration from defaults, an optional config.yaml found in one of
// configFileDirs, and BLOCKFETCH_ prefixed environment variables, in increasing priority.
func Load(configFileDirs ...string) (*BlockfetchConfig, error) {
	blockfetchConfig := getDefaultBlockfetchConfig()

	err := setDefaults("", blockfetchConfig)
	if err != nil {
		return nil, err
	}

	err = overrideWithFiles(configFileDirs...)
	if err != nil {
		return nil, err
	}

	viper.SetEnvPrefix("BLOCKFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err = viper.Unmarshal(blockfetchConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if blockfetchConfig.Tracing != nil {
		tracingAttributes := make([]attribute.KeyValue, 0, len(blockfetchConfig.Tracing.Attributes))
		for key, value := range blockfetchConfig.Tracing.Attributes {
			tracingAttributes = append(tracingAttributes, attribute.String(key, value))
		}

		if len(tracingAttributes) > 0 {
			blockfetchConfig.Tracing.KeyValueAttributes = tracingAttributes
		}
	}

	return blockfetchConfig, nil
}

// setDefaults registers every leaf of value as a dotted viper default, so that nested
// keys can be overridden one by one from a file or the environment.
func setDefaults(prefix string, value any) error {
	defaultsMap, ok := value.(map[string]interface{})
	if !ok {
		defaultsMap = make(map[string]interface{})

		if err := mapstructure.Decode(value, &defaultsMap); err != nil {
			err = errors.Join(ErrConfigFailedToSetDefaults, err)
			return err
		}
	}

	for key, val := range defaultsMap {
		if prefix != "" {
			key = prefix + "." + key
		}

		if _, nested := val.(map[string]interface{}); nested || isStruct(val) {
			if err := setDefaults(key, val); err != nil {
				return err
			}
			continue
		}

		viper.SetDefault(key, val)
	}

	return nil
}

func isStruct(val any) bool {
	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}

	return v.Kind() == reflect.Struct
}

func overrideWithFiles(configFileDirs ...string) error {
	if len(configFileDirs) == 0 || configFileDirs[0] == "" {
		return nil
	}

	for _, path := range configFileDirs {
		stat, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.Join(ErrConfigPath, fmt.Errorf("path: %s does not exist", path))
			}
			return err
		}
		if !stat.IsDir() {
			return errors.Join(ErrConfigPath, fmt.Errorf("path: %s should be a directory", path))
		}

		viper.AddConfigPath(path)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	err := viper.ReadInConfig()
	if err != nil {
		return err
	}

	return nil
}

// DumpConfig writes the effective configuration to filename as YAML.
func DumpConfig(filename string) error {
	out, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	if err = os.WriteFile(filename, out, 0o600); err != nil {
		return errors.Join(ErrConfigFailedToDump, err)
	}

	return nil
}
