package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"haplocheck/domain/dataset"
)

// CohortGeneratorConfig configures the synthetic genotype/mediator generator
type CohortGeneratorConfig struct {
	PatientCount int      `json:"patient_count"`
	Markers      []string `json:"markers"`
	Mediators    []string `json:"mediators"`
	TimeLabels   []string `json:"time_labels"`
	// MajorFrequency is the probability of an A allele for every marker
	MajorFrequency float64 `json:"major_frequency"`
	// EffectMarker shifts every mediator by EffectSize for its BB carriers
	EffectMarker string  `json:"effect_marker"`
	EffectSize   float64 `json:"effect_size"`
	MissingRate  float64 `json:"missing_rate"`
	DeceasedRate float64 `json:"deceased_rate"`
	Seed         int64   `json:"seed"`
}

// DefaultCohortConfig returns a small trauma-cohort shaped configuration
func DefaultCohortConfig() CohortGeneratorConfig {
	return CohortGeneratorConfig{
		PatientCount:   200,
		Markers:        []string{"rs1800795", "rs1800629", "rs1143634", "rs16944"},
		Mediators:      []string{"plasma_2_IL6", "plasma_2_IL10", "plasma_2_TNFa", "plasma_2_MCP1"},
		TimeLabels:     []string{"h0", "hr6r", "h12", "24h", "h48", "h72"},
		MajorFrequency: 0.5,
		EffectSize:     0,
		MissingRate:    0.1,
		DeceasedRate:   0.05,
		Seed:           42,
	}
}

// DischargeRow is the header row carrying discharge disposition
const DischargeRow = "discharge_discharged_to"

// CohortGenerator produces reproducible synthetic datasets
type CohortGenerator struct {
	config CohortGeneratorConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a generator seeded from config
func NewCohortGenerator(config CohortGeneratorConfig) *CohortGenerator {
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Layout returns the row layout of generated tables
func (g *CohortGenerator) Layout() Layout {
	return Layout{
		Schema:     dataset.DefaultSchema(),
		HeaderRows: []string{"age", DischargeRow},
		Samples:    len(g.config.TimeLabels),
		Mediators:  g.config.Mediators,
		Markers:    g.config.Markers,
	}
}

// GeneratePatients draws every patient column
func (g *CohortGenerator) GeneratePatients() []Patient {
	patients := make([]Patient, g.config.PatientCount)
	for i := range patients {
		p := Patient{
			ID:        fmt.Sprintf("HR-%04d", i+1),
			Header:    map[string]string{"age": strconv.Itoa(18 + g.rng.Intn(70)), DischargeRow: "Home"},
			Times:     append([]string(nil), g.config.TimeLabels...),
			Values:    make(map[string][]string, len(g.config.Mediators)),
			Genotypes: make(map[string]string, len(g.config.Markers)),
		}
		if g.rng.Float64() < g.config.DeceasedRate {
			p.Header[DischargeRow] = "Death"
		}
		for _, m := range g.config.Markers {
			p.Genotypes[m] = g.drawGenotype()
		}

		shift := 0.0
		if g.config.EffectMarker != "" && p.Genotypes[g.config.EffectMarker] == "BB" {
			shift = g.config.EffectSize
		}
		for _, med := range g.config.Mediators {
			vals := make([]string, len(g.config.TimeLabels))
			for k := range vals {
				if g.rng.Float64() < g.config.MissingRate {
					continue
				}
				v := 100 + shift + g.rng.NormFloat64()*15
				vals[k] = strconv.FormatFloat(v, 'f', 2, 64)
			}
			p.Values[med] = vals
		}
		patients[i] = p
	}
	return patients
}

// GenerateTable draws patients and lays them out as a raw table
func (g *CohortGenerator) GenerateTable() dataset.Table {
	return BuildTable(g.Layout(), g.GeneratePatients())
}

func (g *CohortGenerator) drawGenotype() string {
	a := g.rng.Float64() < g.config.MajorFrequency
	b := g.rng.Float64() < g.config.MajorFrequency
	switch {
	case a && b:
		return "AA"
	case a || b:
		return "AB"
	}
	return "BB"
}
