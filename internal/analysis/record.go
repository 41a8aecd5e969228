package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/KaramelBytes/soilviz-cli/internal/chart"
	"github.com/KaramelBytes/soilviz-cli/internal/recommend"
	"github.com/KaramelBytes/soilviz-cli/internal/reference"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Record is one analysis result as written by the lab or the prediction
// service: measured nutrients, a water budget (or the climate to derive
// one from) and disease probabilities.
type Record struct {
	ID        string             `yaml:"id" json:"id"`
	Crop      string             `yaml:"crop" json:"crop"`
	PH        *float64           `yaml:"ph" json:"ph" validate:"omitempty,gte=0,lte=14"`
	Nutrients []NutrientEntry    `yaml:"nutrients" json:"nutrients" validate:"omitempty,dive"`
	Water     *WaterEntry        `yaml:"water" json:"water"`
	Climate   *Climate           `yaml:"climate" json:"climate"`
	Diseases  map[string]float64 `yaml:"diseases" json:"diseases" validate:"omitempty,dive,keys,required,endkeys,gte=0,lte=1"`
	// NormalizeDiseases rescales Diseases to sum to 1 before charting.
	NormalizeDiseases bool `yaml:"normalize_diseases" json:"normalize_diseases"`
}

// NutrientEntry is a measured value. Low and High are optional together;
// when absent the band comes from the reference table.
type NutrientEntry struct {
	Name  string   `yaml:"name" json:"name" validate:"required"`
	Value float64  `yaml:"value" json:"value"`
	Unit  string   `yaml:"unit" json:"unit"`
	Low   *float64 `yaml:"low" json:"low" validate:"required_with=High"`
	High  *float64 `yaml:"high" json:"high" validate:"required_with=Low"`
}

// WaterEntry is an explicit water budget in mm.
type WaterEntry struct {
	TotalNeed          float64 `yaml:"total_need" json:"total_need" validate:"gte=0"`
	Rainfall           float64 `yaml:"rainfall" json:"rainfall" validate:"gte=0"`
	IrrigationRequired float64 `yaml:"irrigation_required" json:"irrigation_required" validate:"gte=0"`
}

// Climate lets the water budget be derived instead of given.
type Climate struct {
	Temperature float64 `yaml:"temperature" json:"temperature" validate:"gte=-50,lte=60"`
	Rainfall    float64 `yaml:"rainfall" json:"rainfall" validate:"gte=0"`
	Efficiency  float64 `yaml:"efficiency" json:"efficiency" validate:"gt=0,lte=1"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// IsRecordFile reports whether path looks like a YAML or JSON record.
func IsRecordFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadRecord reads and validates a record. JSON files use encoding/json,
// everything else is decoded as YAML. Unknown keys are rejected.
func LoadRecord(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	var r Record
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("parse record %s: %w", filepath.Base(path), err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("parse record %s: %w", filepath.Base(path), err)
		}
	}
	if r.ID == "" {
		r.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks struct constraints and reports the first failure as a
// *chart.ValidationError naming the field.
func (r *Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate record: %w", err)
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return &chart.ValidationError{Field: field, Reason: reason(fe)}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required when " + strings.ToLower(fe.Param()) + " is set"
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be > %s, got %v", fe.Param(), fe.Value())
	}
	return "failed " + fe.Tag()
}

// Series builds the nutrient series, filling missing bands and units from ref.
func (r *Record) Series(ref *reference.Table) (chart.MetricSeries, error) {
	metrics := make([]chart.Metric, 0, len(r.Nutrients))
	for i, n := range r.Nutrients {
		m := chart.Metric{Name: n.Name, Value: n.Value, Unit: n.Unit}
		if n.Low != nil && n.High != nil {
			m.Band = chart.RangeBand{Low: *n.Low, High: *n.High}
		} else {
			rr, ok := lookup(ref, n.Name)
			if !ok {
				return chart.MetricSeries{}, &chart.ValidationError{Field: fmt.Sprintf("nutrients[%d].low", i), Reason: "no band given and no reference range for " + n.Name}
			}
			m.Band = rr.Band()
			if m.Unit == "" {
				m.Unit = rr.Unit
			}
		}
		metrics = append(metrics, m)
	}
	s, err := chart.MetricSeriesFrom(metrics)
	if err != nil {
		var ve *chart.ValidationError
		if errors.As(err, &ve) {
			return chart.MetricSeries{}, &chart.ValidationError{Field: "nutrients." + ve.Field, Reason: ve.Reason}
		}
		return chart.MetricSeries{}, err
	}
	return s, nil
}

// Irrigation derives the season estimate from Climate. ok is false when
// the record carries no climate block.
func (r *Record) Irrigation() (recommend.Irrigation, bool) {
	if r.Climate == nil {
		return recommend.Irrigation{}, false
	}
	return recommend.EstimateIrrigation(r.Climate.Temperature, r.Climate.Rainfall, r.Climate.Efficiency), true
}

// WaterBudget returns the explicit budget, or one derived from Climate, or nil.
func (r *Record) WaterBudget() (*chart.WaterBudget, error) {
	if r.Water != nil {
		w, err := chart.NewWaterBudget(r.Water.TotalNeed, r.Water.Rainfall, r.Water.IrrigationRequired)
		if err != nil {
			return nil, err
		}
		return &w, nil
	}
	if irr, ok := r.Irrigation(); ok {
		w, err := irr.Budget()
		if err != nil {
			return nil, err
		}
		return &w, nil
	}
	return nil, nil
}

// Probabilities returns the disease set, normalized when requested.
func (r *Record) Probabilities() (chart.ProbabilitySet, error) {
	m := r.Diseases
	if r.NormalizeDiseases {
		m = recommend.Normalize(m)
	}
	return chart.ProbabilitySetFromMap(m)
}

// Readings lists nutrients for fertilizer advice.
func (r *Record) Readings() []recommend.NutrientReading {
	out := make([]recommend.NutrientReading, len(r.Nutrients))
	for i, n := range r.Nutrients {
		out[i] = recommend.NutrientReading{Name: n.Name, Value: n.Value}
	}
	return out
}

// ToInput converts the record into chart input.
func (r *Record) ToInput(ref *reference.Table) (chart.Input, error) {
	var in chart.Input
	var err error
	if in.Metrics, err = r.Series(ref); err != nil {
		return chart.Input{}, err
	}
	if in.Water, err = r.WaterBudget(); err != nil {
		return chart.Input{}, err
	}
	if in.Probabilities, err = r.Probabilities(); err != nil {
		return chart.Input{}, err
	}
	return in, nil
}
