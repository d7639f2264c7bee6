package cmd

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/eventexport/internal/config"
	"github.com/jmylchreest/eventexport/pkg/duration"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the effective configuration",
	Long: `Dump the configuration in YAML, after defaults, the config file and
environment overrides have been applied. Secrets are masked.

  eventexport config dump > config.yaml

Environment variables use the EVENTEXPORT_ prefix and underscores for
nesting, e.g. server.port -> EVENTEXPORT_SERVER_PORT.`,
	RunE: runConfigDump,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
}

// secretKeys are masked in dumps.
var secretKeys = map[string]bool{
	"secret_key": true,
	"access_key": true,
}

var byteSizeType = reflect.TypeOf(config.ByteSize(0))

// toMap converts a config struct to a map, formatting durations and sizes
// the way they are written in config files.
func toMap(v any) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(v))
	typ := val.Type()
	result := make(map[string]any, val.NumField())

	for i := 0; i < val.NumField(); i++ {
		key := typ.Field(i).Tag.Get("mapstructure")
		if key == "" {
			key = typ.Field(i).Name
		}
		result[key] = toValue(key, val.Field(i))
	}
	return result
}

func toValue(key string, field reflect.Value) any {
	if secretKeys[key] && !field.IsZero() {
		return "********"
	}
	if field.Type() == byteSizeType {
		return field.Interface().(config.ByteSize).String()
	}
	if d, ok := field.Interface().(time.Duration); ok {
		return duration.Format(d)
	}
	switch field.Kind() {
	case reflect.Struct:
		return toMap(field.Interface())
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.Struct {
			return field.Interface()
		}
		items := make([]any, field.Len())
		for i := range items {
			items[i] = toMap(field.Index(i).Interface())
		}
		return items
	}
	return field.Interface()
}

func runConfigDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(toMap(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "# eventexport configuration")
	fmt.Fprintln(w, "# Duration format: 30s, 5m, 1h, 7d")
	fmt.Fprintln(w, "# Size format: 512KB, 100MB, 1GB")
	fmt.Fprintln(w)
	_, err = w.Write(data)
	return err
}
