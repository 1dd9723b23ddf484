package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bzeiss/sessionprep-sub001/colormap"
	"github.com/bzeiss/sessionprep-sub001/melspec"
)

// Settings holds the display configuration for the waveform and
// spectrogram views.
type Settings struct {
	Colormap    string
	FFTSize     int
	Window      melspec.Window
	DBFloor     float64
	DBCeil      float64
	RMSWindowMS float64
}

// NewDefaultSettings returns the out-of-the-box display configuration.
func NewDefaultSettings() *Settings {
	return &Settings{
		Colormap:    colormap.DefaultName,
		FFTSize:     melspec.DefaultFFTSize,
		Window:      melspec.WindowHann,
		DBFloor:     -80,
		DBCeil:      0,
		RMSWindowMS: 0,
	}
}

// File is the JSON schema for display settings files. Absent fields keep
// their current values.
type File struct {
	Colormap    string   `json:"colormap"`
	FFTSize     *int     `json:"fft_size"`
	Window      string   `json:"window"`
	DBFloor     *float64 `json:"db_floor"`
	DBCeil      *float64 `json:"db_ceil"`
	RMSWindowMS *float64 `json:"rms_window_ms"`
}

// LoadJSON loads a settings JSON file and applies it on top of the
// defaults.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := NewDefaultSettings()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyFile applies a parsed settings file onto an existing settings
// object.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.Colormap != "" {
		if _, err := colormap.Lookup(f.Colormap); err != nil {
			return err
		}
		dst.Colormap = f.Colormap
	}
	if f.FFTSize != nil {
		if !melspec.ValidFFTSize(*f.FFTSize) {
			return fmt.Errorf("fft_size must be one of %v", melspec.FFTSizes)
		}
		dst.FFTSize = *f.FFTSize
	}
	if f.Window != "" {
		w, err := melspec.ParseWindow(f.Window)
		if err != nil {
			return err
		}
		dst.Window = w
	}
	if f.DBFloor != nil {
		dst.DBFloor = *f.DBFloor
	}
	if f.DBCeil != nil {
		dst.DBCeil = *f.DBCeil
	}
	if dst.DBCeil <= dst.DBFloor {
		return fmt.Errorf("db_ceil must be > db_floor")
	}
	if f.RMSWindowMS != nil {
		if *f.RMSWindowMS < 0 {
			return fmt.Errorf("rms_window_ms must be >= 0")
		}
		dst.RMSWindowMS = *f.RMSWindowMS
	}
	return nil
}
