package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingInput     = errors.New("input path is required")
	ErrInvalidHistogram = errors.New("histogram range is invalid")
	ErrInvalidTopN      = errors.New("top_n must be positive")
	ErrUnknownEncoding  = errors.New("unknown input encoding")
	ErrUnknownSection   = errors.New("unknown analysis section")
	ErrInvalidHeaderRow = errors.New("header_row must not be negative")
)

// Sections lists the analysis sections in report order.
var Sections = []string{"airline", "airport", "seasonality", "delays", "misc"}

// Encodings lists the accepted input encodings.
var Encodings = []string{"utf-8", "latin1", "windows-1252", "gbk"}

// Config 应用程序配置
type Config struct {
	DataDir string `yaml:"data_dir" default:"./data"` // 输入输出的相对路径基准目录

	Input struct {
		Airports  string `yaml:"airports" default:"airports.csv"`
		Airlines  string `yaml:"airlines" default:"airlines.csv"`
		Flights   string `yaml:"flights" default:"flights.csv"`
		Encoding  string `yaml:"encoding" default:"utf-8"`
		SheetName string `yaml:"sheet_name"` // xlsx input only, first sheet when empty
		HeaderRow int    `yaml:"header_row"`
	} `yaml:"input"`

	Output struct {
		Cleaned     string `yaml:"cleaned" default:"cleaned_flight_data.csv"`
		Excel       string `yaml:"excel"`
		Arrow       string `yaml:"arrow"`
		SQLite      string `yaml:"sqlite"`
		SQLiteTable string `yaml:"sqlite_table" default:"flights"`
	} `yaml:"output"`

	Join struct {
		OriginSuffix      string `yaml:"origin_suffix" default:"_origin"`
		DestinationSuffix string `yaml:"destination_suffix" default:"_destination"`
		DedupeLookups     bool   `yaml:"dedupe_lookups"`
	} `yaml:"join"`

	Analysis struct {
		TopN      int `yaml:"top_n" default:"10"`
		Histogram struct {
			Min      float64 `yaml:"min" default:"-60"`
			Max      float64 `yaml:"max" default:"180"`
			BinWidth float64 `yaml:"bin_width" default:"10"`
		} `yaml:"histogram"`
		ScatterMaxPoints int      `yaml:"scatter_max_points" default:"2000"`
		Sections         []string `yaml:"sections"`
		Workbook         string   `yaml:"workbook" default:"flight_report.xlsx"`
		Preview          bool     `yaml:"preview"`
	} `yaml:"analysis"`

	Log struct {
		Level   string `yaml:"level" default:"info"`
		File    string `yaml:"file"`
		MaxSize string `yaml:"max_size" default:"10 * 1024 * 1024"`
	} `yaml:"log"`

	Watch struct {
		Debounce Duration `yaml:"debounce" default:"2s"`
	} `yaml:"watch"`

	MetricsFile string `yaml:"metrics_file"`
}

// DataConfig 列名映射与清洗规则
type DataConfig struct {
	Flights  map[string]string `yaml:"flights"`
	Airlines map[string]string `yaml:"airlines"`
	Airports map[string]string `yaml:"airports"`

	AirportAttributes    []string `yaml:"airport_attributes"`
	DelayColumns         []string `yaml:"delay_columns"`
	FlagColumns          []string `yaml:"flag_columns"`
	TimeColumns          []string `yaml:"time_columns"`
	CancellationSentinel []string `yaml:"cancellation_sentinels"`
}

// Load reads the application and data configuration files. A missing file
// leaves the defaults in place.
func Load(cfgFile, dataCfgFile string) (*Config, *DataConfig, error) {
	configData, err := readFile(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	dataConfigData, err := readFile(dataCfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取数据配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	dcfgChan := make(chan *DataConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseDataConfig(dataConfigData, dcfgChan, errChan)

	return waitForResults(cfgChan, dcfgChan, errChan)
}

func readFile(filePath string) ([]byte, error) {
	if filePath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filePath) //nolint:gosec // user supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		errChan <- fmt.Errorf("设置Config默认值失败: %w", err)
		return
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- cfg
}

func parseDataConfig(data []byte, resultChan chan<- *DataConfig, errChan chan<- error) {
	dcfg := DefaultDataConfig()
	overrides := &DataConfig{}
	if err := yaml.Unmarshal(data, overrides); err != nil {
		errChan <- fmt.Errorf("解析DataConfig失败: %w", err)
		return
	}
	dcfg.merge(overrides)
	resultChan <- dcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	dcfgChan <-chan *DataConfig,
	errChan <-chan error,
) (*Config, *DataConfig, error) {
	var (
		cfg  *Config
		dcfg *DataConfig
		errs []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case d := <-dcfgChan:
			dcfg = d
		case err := <-errChan:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}

	return cfg, dcfg, nil
}

func combineErrors(errs []error) error {
	return fmt.Errorf("配置加载遇到错误: %w", errors.Join(errs...))
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Input.Airports == "" || c.Input.Airlines == "" || c.Input.Flights == "" {
		return ErrMissingInput
	}
	if c.Output.Cleaned == "" {
		return fmt.Errorf("%w: output.cleaned", ErrMissingInput)
	}
	if c.Input.HeaderRow < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHeaderRow, c.Input.HeaderRow)
	}
	if !contains(Encodings, strings.ToLower(c.Input.Encoding)) {
		return fmt.Errorf("%w: %s", ErrUnknownEncoding, c.Input.Encoding)
	}
	if c.Analysis.TopN <= 0 {
		return ErrInvalidTopN
	}
	h := c.Analysis.Histogram
	if h.BinWidth <= 0 || h.Max <= h.Min {
		return fmt.Errorf("%w: min=%v max=%v bin_width=%v", ErrInvalidHistogram, h.Min, h.Max, h.BinWidth)
	}
	return c.ValidateSections()
}

// ValidateSections checks analysis.sections against the known sections.
func (c *Config) ValidateSections() error {
	for _, s := range c.Analysis.Sections {
		if !contains(Sections, s) {
			return fmt.Errorf("%w: %s", ErrUnknownSection, s)
		}
	}
	return nil
}

// Path resolves p against DataDir unless p is absolute or empty.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Duration wraps time.Duration so it can be written as "2s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// UnmarshalText is used by creasty/defaults for the default tag.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// FlightColumn returns the cleaned name of a raw flights column.
func (dc *DataConfig) FlightColumn(raw string) string {
	return dc.Flights[raw]
}

func (dc *DataConfig) merge(o *DataConfig) {
	for k, v := range o.Flights {
		dc.Flights[k] = v
	}
	for k, v := range o.Airlines {
		dc.Airlines[k] = v
	}
	for k, v := range o.Airports {
		dc.Airports[k] = v
	}
	if len(o.AirportAttributes) > 0 {
		dc.AirportAttributes = o.AirportAttributes
	}
	if len(o.DelayColumns) > 0 {
		dc.DelayColumns = o.DelayColumns
	}
	if len(o.FlagColumns) > 0 {
		dc.FlagColumns = o.FlagColumns
	}
	if len(o.TimeColumns) > 0 {
		dc.TimeColumns = o.TimeColumns
	}
	if len(o.CancellationSentinel) > 0 {
		dc.CancellationSentinel = o.CancellationSentinel
	}
}
