package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Radius bounds. The ribbon pipeline uses 0.333334 as a numerically safe
// stand-in for 1/3 on both sides of the trivial/topological split.
const (
	ribbonThirdBound   = 0.333334
	embeddedThirdBound = 1.0 / 3
	maxClusterRadius   = 0.5
	embeddedMargin     = 0.1
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator with the cluster-radius rules registered.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("trivialradius", trivialRadiusRule)
		_ = v.RegisterValidation("topologicalradius", topologicalRadiusRule)
		validate = v
	})
	return validate
}

// thirdBound picks the trivial/topological split for the pipeline owning the field.
func thirdBound(fl validator.FieldLevel) float64 {
	parent := fl.Parent()
	if parent.Kind() == reflect.Pointer {
		parent = parent.Elem()
	}
	if parent.Kind() == reflect.Struct {
		if p := parent.FieldByName("Pipeline"); p.IsValid() && Pipeline(p.String()) == PipelineRibbon {
			return ribbonThirdBound
		}
	}
	return embeddedThirdBound
}

func trivialRadiusRule(fl validator.FieldLevel) bool {
	r := fl.Field().Float()
	return r > 0 && r < thirdBound(fl)
}

func topologicalRadiusRule(fl validator.FieldLevel) bool {
	r := fl.Field().Float()
	return r > thirdBound(fl) && r < maxClusterRadius
}

// Validate checks that the parameters describe non-overlapping, well-formed
// clusters inside the requested supercell. Every violation is reported in one
// PRECONDITION error; no geometry may be generated when it fails.
func Validate(cfg Config) error {
	var violations []string
	v := structValidator()
	collect := func(err error) {
		if err == nil {
			return
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				violations = append(violations, describeFieldError(fe))
			}
			return
		}
		violations = append(violations, err.Error())
	}

	collect(v.Struct(cfg))
	switch cfg.Pipeline {
	case PipelineRibbon:
		collect(v.Struct(cfg.Ribbon))
		violations = append(violations, ribbonGeometry(cfg.Ribbon)...)
	case PipelineEmbedded:
		collect(v.Struct(cfg.Embedded))
		violations = append(violations, embeddedGeometry(cfg.Embedded)...)
	}
	if len(violations) > 0 {
		return newPreconditionError(violations)
	}
	return nil
}

// ribbonGeometry requires the particle to fit strictly inside the supercell
// half extents and the dummy window to reach every supercell cell.
func ribbonGeometry(r RibbonConfig) []string {
	var out []string
	if !(r.ParticleRadius < r.SupercellX/2 && r.ParticleRadius < r.SupercellY/2) {
		out = append(out, fmt.Sprintf("particle_radius %d must be below half the supercell (%dx%d)", r.ParticleRadius, r.SupercellX, r.SupercellY))
	}
	if c, ok := newRibbonWindow(r).uncovered(); ok {
		out = append(out, fmt.Sprintf("dummy window %dx%d does not cover supercell cell %s", r.DummySizeX, r.DummySizeY, c))
	}
	return out
}

// embeddedGeometry requires an odd supercell leaving a margin around the embedded supercluster.
func embeddedGeometry(e EmbeddedConfig) []string {
	var out []string
	if !(float64(e.SupercellSize) > 2*float64(e.TopologicalRadius)+embeddedMargin) {
		out = append(out, fmt.Sprintf("supercell_size %d too small for topological_radius %d", e.SupercellSize, e.TopologicalRadius))
	}
	if (e.SupercellSize-1)%2 != 0 {
		out = append(out, fmt.Sprintf("supercell_size %d must be odd", e.SupercellSize))
	}
	for _, c := range e.DefectCells {
		if c.One < 0 || c.Two < 0 || c.One >= e.SupercellSize || c.Two >= e.SupercellSize {
			out = append(out, fmt.Sprintf("defect cell %s outside the %dx%d supercell", c, e.SupercellSize, e.SupercellSize))
		}
	}
	return out
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "trivialradius":
		return fmt.Sprintf("%s %v outside (0, 1/3)", fe.Field(), fe.Value())
	case "topologicalradius":
		return fmt.Sprintf("%s %v outside (1/3, 1/2)", fe.Field(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s %v must be one of [%s]", fe.Field(), fe.Value(), fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s %v fails %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s %v fails %s", fe.Field(), fe.Value(), fe.Tag())
	}
}
