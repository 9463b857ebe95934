// Package config loads and validates the pre-parsed configuration record
// that the rest of birdtrack consumes: detection thresholds, tracking
// thresholds, temporal/spatial filter toggles, and output/sink settings.
// It is the sole place in the module that knows about JSON/YAML files or
// environment variables — every other package only ever sees the typed
// structs this package produces.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Record is the fully parsed, defaulted configuration for one run. Field
// names mirror the dotted-key sections of the configuration file
// (detection.*, spatial_filter.*, tracking.*, temporal_filter.*,
// output.*).
type Record struct {
	Detection struct {
		MinContourArea   float64 `mapstructure:"min_contour_area"`
		MaxContourArea   float64 `mapstructure:"max_contour_area"`
		BlurKernelSize   int     `mapstructure:"blur_kernel_size"`
		MorphKernelSize  int     `mapstructure:"morph_kernel_size"`
		MorphIterations  int     `mapstructure:"morph_iterations"`
		MOG2History      int     `mapstructure:"mog2_history"`
		MOG2VarThreshold float64 `mapstructure:"mog2_var_threshold"`
	} `mapstructure:"detection"`

	SpatialFilter struct {
		Enabled            bool    `mapstructure:"enabled"`
		HorizonLinePercent float64 `mapstructure:"horizon_line_percent"`
	} `mapstructure:"spatial_filter"`

	Tracking struct {
		MaxDisappeared int     `mapstructure:"max_disappeared"`
		MaxDistance    float64 `mapstructure:"max_distance"`
	} `mapstructure:"tracking"`

	TemporalFilter struct {
		Enabled          bool    `mapstructure:"enabled"`
		MinConfirmFrames int     `mapstructure:"min_confirm_frames"`
		MinMoveDistance  float64 `mapstructure:"min_move_distance"`
	} `mapstructure:"temporal_filter"`

	Output struct {
		Mode     string `mapstructure:"mode"` // batch, stdout, websocket, nats, postgres
		Address  string `mapstructure:"address"`
		DSN      string `mapstructure:"dsn"`
		NATSURL  string `mapstructure:"nats_url"`
		NATSSubj string `mapstructure:"nats_subject"`
	} `mapstructure:"output"`
}

// Load reads configuration from path (JSON or YAML, detected by
// extension), overlays any BIRDTRACK_-prefixed environment variables, and
// fills in defaults matching the original detector/tracker scripts. flags,
// if non-nil, are bound so CLI overrides win over the file and
// environment.
func Load(path string, flags *pflag.FlagSet) (Record, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BIRDTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Record{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return Record{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var rec Record
	if err := v.Unmarshal(&rec); err != nil {
		return Record{}, fmt.Errorf("config: decode: %w", err)
	}

	return rec, nil
}

// Validate checks the record for internally-inconsistent values that
// cannot simply be defaulted or clamped away, and clamps the values that
// can be (warning through log when it does).
func Validate(rec *Record, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	if rec.Detection.BlurKernelSize < 1 || rec.Detection.BlurKernelSize%2 == 0 {
		return fmt.Errorf("config: detection.blur_kernel_size must be odd and positive, got %d", rec.Detection.BlurKernelSize)
	}
	if rec.Detection.MorphKernelSize < 1 {
		return fmt.Errorf("config: detection.morph_kernel_size must be positive, got %d", rec.Detection.MorphKernelSize)
	}
	if rec.Detection.MaxContourArea < rec.Detection.MinContourArea {
		return fmt.Errorf("config: detection.max_contour_area must be >= min_contour_area")
	}
	if rec.Tracking.MaxDistance <= 0 {
		return fmt.Errorf("config: tracking.max_distance must be positive")
	}
	if rec.Tracking.MaxDisappeared < 0 {
		return fmt.Errorf("config: tracking.max_disappeared must be non-negative")
	}

	if rec.SpatialFilter.HorizonLinePercent < 0.0 || rec.SpatialFilter.HorizonLinePercent > 1.0 {
		log.Warn("spatial_filter.horizon_line_percent out of range, clamping to [0,1]",
			zap.Float64("configured", rec.SpatialFilter.HorizonLinePercent))
		rec.SpatialFilter.HorizonLinePercent = clamp01(rec.SpatialFilter.HorizonLinePercent)
	}

	return nil
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

func defaultsViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("detection.min_contour_area", 30.0)
	v.SetDefault("detection.max_contour_area", 5000.0)
	v.SetDefault("detection.blur_kernel_size", 5)
	v.SetDefault("detection.morph_kernel_size", 3)
	v.SetDefault("detection.morph_iterations", 1)
	v.SetDefault("detection.mog2_history", 500)
	v.SetDefault("detection.mog2_var_threshold", 16.0)

	v.SetDefault("spatial_filter.enabled", false)
	v.SetDefault("spatial_filter.horizon_line_percent", 0.70)

	v.SetDefault("tracking.max_disappeared", 10)
	v.SetDefault("tracking.max_distance", 75.0)

	v.SetDefault("temporal_filter.enabled", false)
	v.SetDefault("temporal_filter.min_confirm_frames", 15)
	v.SetDefault("temporal_filter.min_move_distance", 50.0)

	v.SetDefault("output.mode", "batch")
}
