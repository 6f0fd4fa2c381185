// Package inspection turns a free-text health-check report into a table of
// passing conditions. It holds the YAML data-source definition, the
// retrieval pipeline and the per-line report parser.
package inspection

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data Model (matches the YAML layout)
// -----------------------------------------------------------------------------

type DataSource struct {
	Name     string   `yaml:"name" validate:"required"`
	Protocol Protocol `yaml:"protocol"`
	Table    Table    `yaml:"table"`
	Schedule Schedule `yaml:"schedule"`
}

type Protocol struct {
	Name           string `yaml:"name" validate:"required"`
	Version        string `yaml:"version" validate:"required"`
	IncludeStopped bool   `yaml:"include_stopped"`
}

// Table 描述要读取的表参数及其列
type Table struct {
	ParameterID  int `yaml:"parameter_id" validate:"required,min=1"`
	IndexColumn  int `yaml:"index_column" validate:"required,min=1"`
	DetailColumn int `yaml:"detail_column" validate:"required,min=1"`
	// Filters 为空时使用默认过滤器；每一项都是 text/template
	Filters []string `yaml:"filters" validate:"omitempty,dive,required"`
}

type Schedule struct {
	Cron        string `yaml:"cron" validate:"omitempty,cronexpr"`
	Description string `yaml:"description"`
	Enabled     bool   `yaml:"enabled"`
}

// DefaultFilters are the table filters sent when the definition lists none.
var DefaultFilters = []string{
	"ForceFullTable=true",
	"columns={{.DetailColumn}}",
	"value={{.IndexColumn}} == {{.Index}}",
}

// DefaultDataSource returns the built-in definition.
func DefaultDataSource() *DataSource {
	return &DataSource{
		Name: DefaultDataSourceName,
		Protocol: Protocol{
			Name:    DefaultProtocolName,
			Version: DefaultProtocolVersion,
		},
		Table: Table{
			ParameterID:  DefaultParameterID,
			IndexColumn:  DefaultIndexColumn,
			DetailColumn: DefaultDetailColumn,
		},
	}
}

// -----------------------------------------------------------------------------
// Initialisation & Validation helpers
// -----------------------------------------------------------------------------

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("cronexpr", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
}

// -----------------------------------------------------------------------------
// Parsing helpers
// -----------------------------------------------------------------------------

func ParseDataSourceFile(path string) (*DataSource, error) {
	byts, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data source: %w", err)
	}
	return ParseDataSourceBytes(byts)
}

// ParseDataSourceBytes decodes a definition on top of the defaults, so any
// key left out keeps its built-in value.
func ParseDataSourceBytes(data []byte) (*DataSource, error) {
	ds := DefaultDataSource()
	if err := yaml.Unmarshal(data, ds); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *DataSource) Validate() error {
	if err := validate.Struct(ds); err != nil {
		return fmt.Errorf("data source validation: %w", err)
	}
	if ds.Schedule.Enabled && ds.Schedule.Cron == "" {
		return fmt.Errorf("data source validation: schedule enabled without cron expression")
	}
	return nil
}

// CronSchedule parses the schedule expression.
func (ds *DataSource) CronSchedule() (cron.Schedule, error) {
	if ds.Schedule.Cron == "" {
		return nil, fmt.Errorf("no schedule configured for %s", ds.Name)
	}
	return cron.ParseStandard(ds.Schedule.Cron)
}
