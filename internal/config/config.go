package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/someobserver/godel/internal/errors"
)

// Config is the complete runtime configuration for the geometric engine.
type Config struct {
	Dimensions Dimensions         `validate:"required"`
	Guards     NumericalGuards    `validate:"required"`
	Detectors  DetectorThresholds `validate:"required"`
	Clustering ClusteringConfig
	Evolution  EvolutionConfig
	Database   DatabaseConfig `validate:"required"`
}

// Dimensions fixes the vector shapes the geometry kernel expects (spec §3).
type Dimensions struct {
	// StorageDim is the dimensionality a ManifoldPoint's embedding is
	// persisted at (N).
	StorageDim int
	// ActiveDim is the dimensionality operators actually compute over (n),
	// after truncation. ActiveDim <= StorageDim.
	ActiveDim int
	// SmallWindow is the small-window constant (w) certain reductions use.
	SmallWindow int
}

// NumericalGuards holds the floors, epsilons, and clamps spec §9's
// numerically-sensitive routines are built around.
type NumericalGuards struct {
	// DetFloor is the absolute determinant value below which a matrix is
	// treated as singular before any regularization is attempted.
	DetFloor float64
	// PivotEps is the magnitude below which a Gauss-Jordan pivot is
	// floored to zero rather than divided by.
	PivotEps float64
	// TikhonovAdd is the diagonal regularization added before inversion
	// when the determinant's magnitude falls below DetFloor.
	TikhonovAdd float64
	// ExpClamp bounds the argument to exp() in the humility operator to
	// avoid overflow.
	ExpClamp float64
	// GenericEps is the catch-all tolerance for float comparisons that
	// aren't governed by a more specific guard above.
	GenericEps float64
}

// DetectorThresholds holds every tunable constant the twelve signature
// detectors of spec §4.5 compare observations against.
type DetectorThresholds struct {
	// Rigidity group.
	AttractorCritical      float64 // A_crit
	ConstraintThreshold    float64 // C_thr, shared with the autopoietic potential calls
	DogmatismTau           float64 // tau
	BeliefWindowHours      float64
	BeliefDeltaMax         float64
	BeliefMassMin          float64
	MetricCrystEvoMax      float64
	MetricCrystPressureMin float64

	// Fragmentation group.
	SplinterWindowHours         float64
	SplinterDistance            float64
	SplinterRatioMin            float64
	CoherenceNormMin            float64
	CoherenceGradientMultiplier float64
	DecayWindowCount            int
	DecayRateThreshold          float64 // negative: decay_rate must fall below this
	DecayWisdomMax              float64

	// Inflation group.
	DelusionRatio              float64
	DelusionHumilityMax        float64
	DelusionWisdomMax          float64
	HypercoherenceTrigger      float64
	HypercoherenceWindowHours  float64
	HypercoherenceFluxMax      float64
	ParasitismWindowHours      float64
	ParasitismLocalMin         float64
	ParasitismEcologicalMax    float64 // negative: ecological rate must fall below this

	// Observer-coupling group.
	ParanoidWindowHours        float64
	ParanoidSampleCount        int
	ParanoidBiasMin            float64
	ParanoidThreatConc         float64
	SolipsismSampleCount       int
	SolipsismRatioMin          float64
	NarcissismWindowHours      float64
	NarcissismSelfFraction     float64
	NarcissismExternalFraction float64
}

// ClusteringConfig parameterizes coordination-cluster detection (spec §4.6).
type ClusteringConfig struct {
	WindowHours       float64
	CouplingThreshold float64
	MinClusterSize    int
	ConfidenceMin     float64
}

// EvolutionConfig parameterizes the coherence-field evolution integrator
// (spec §4.7) and the default Phi/H parameterization used elsewhere.
type EvolutionConfig struct {
	DT               float64
	FiniteDiffH      float64
	CThreshold       float64
	AutopoieticAlpha float64
	AutopoieticBeta  float64
	HumilityK        float64
	ROpt             float64
}

// DatabaseConfig holds the postgres adapter's connection settings.
type DatabaseConfig struct {
	URL      string `validate:"required"`
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

// Load reads configuration from the environment (optionally seeded by a
// local .env file) and validates required fields.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Dimensions: loadDimensions(),
		Guards:     loadNumericalGuards(),
		Detectors:  loadDetectorThresholds(),
		Clustering: loadClusteringConfig(),
		Evolution:  loadEvolutionConfig(),
	}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	cfg.Database = *dbConfig

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// Defaults mirrors Load, including the GODEL_* environment overrides, but
// does not read a .env file, leaves Database empty, and never requires
// DATABASE_URL — used by tests and the CLI's --demo mode.
func Defaults() *Config {
	return &Config{
		Dimensions: loadDimensions(),
		Guards:     loadNumericalGuards(),
		Detectors:  loadDetectorThresholds(),
		Clustering: loadClusteringConfig(),
		Evolution:  loadEvolutionConfig(),
	}
}

func loadDimensions() Dimensions {
	return Dimensions{
		StorageDim:  getEnvIntOrDefault("GODEL_STORAGE_DIM", 2000),
		ActiveDim:   getEnvIntOrDefault("GODEL_ACTIVE_DIM", 100),
		SmallWindow: getEnvIntOrDefault("GODEL_SMALL_WINDOW", 50),
	}
}

func loadNumericalGuards() NumericalGuards {
	return NumericalGuards{
		DetFloor:    getEnvFloatOrDefault("GODEL_DET_FLOOR", 1e-10),
		PivotEps:    getEnvFloatOrDefault("GODEL_PIVOT_EPS", 1e-12),
		TikhonovAdd: getEnvFloatOrDefault("GODEL_TIKHONOV_ADD", 1e-6),
		ExpClamp:    getEnvFloatOrDefault("GODEL_EXP_CLAMP", 50.0),
		GenericEps:  getEnvFloatOrDefault("GODEL_GENERIC_EPS", 1e-10),
	}
}

func loadDetectorThresholds() DetectorThresholds {
	return DetectorThresholds{
		AttractorCritical:      getEnvFloatOrDefault("GODEL_ATTRACTOR_CRITICAL", 0.8),
		ConstraintThreshold:    getEnvFloatOrDefault("GODEL_CONSTRAINT_THRESHOLD", 0.7),
		DogmatismTau:           getEnvFloatOrDefault("GODEL_DOGMATISM_TAU", 3.0),
		BeliefWindowHours:      getEnvFloatOrDefault("GODEL_BELIEF_WINDOW_HOURS", 6.0),
		BeliefDeltaMax:         getEnvFloatOrDefault("GODEL_BELIEF_DELTA_MAX", 0.01),
		BeliefMassMin:          getEnvFloatOrDefault("GODEL_BELIEF_MASS_MIN", 0.3),
		MetricCrystEvoMax:      getEnvFloatOrDefault("GODEL_METRIC_CRYST_EVO_MAX", 0.01),
		MetricCrystPressureMin: getEnvFloatOrDefault("GODEL_METRIC_CRYST_PRESSURE_MIN", 0.1),

		SplinterWindowHours:         getEnvFloatOrDefault("GODEL_SPLINTER_WINDOW_HOURS", 2.0),
		SplinterDistance:            getEnvFloatOrDefault("GODEL_SPLINTER_DISTANCE", 0.3),
		SplinterRatioMin:            getEnvFloatOrDefault("GODEL_SPLINTER_RATIO_MIN", 2.0),
		CoherenceNormMin:            getEnvFloatOrDefault("GODEL_COHERENCE_NORM_MIN", 0.1),
		CoherenceGradientMultiplier: getEnvFloatOrDefault("GODEL_COHERENCE_GRADIENT_MULTIPLIER", 3.0),
		DecayWindowCount:            getEnvIntOrDefault("GODEL_DECAY_WINDOW_COUNT", 10),
		DecayRateThreshold:          getEnvFloatOrDefault("GODEL_DECAY_RATE_THRESHOLD", -0.1),
		DecayWisdomMax:              getEnvFloatOrDefault("GODEL_DECAY_WISDOM_MAX", 0.3),

		DelusionRatio:              getEnvFloatOrDefault("GODEL_DELUSION_RATIO", 5.0),
		DelusionHumilityMax:        getEnvFloatOrDefault("GODEL_DELUSION_HUMILITY_MAX", 0.1),
		DelusionWisdomMax:          getEnvFloatOrDefault("GODEL_DELUSION_WISDOM_MAX", 0.2),
		HypercoherenceTrigger:      getEnvFloatOrDefault("GODEL_HYPERCOHERENCE_TRIGGER", 0.95),
		HypercoherenceWindowHours:  getEnvFloatOrDefault("GODEL_HYPERCOHERENCE_WINDOW_HOURS", 4.0),
		HypercoherenceFluxMax:      getEnvFloatOrDefault("GODEL_HYPERCOHERENCE_FLUX_MAX", 0.1),
		ParasitismWindowHours:      getEnvFloatOrDefault("GODEL_PARASITISM_WINDOW_HOURS", 6.0),
		ParasitismLocalMin:         getEnvFloatOrDefault("GODEL_PARASITISM_LOCAL_MIN", 0.5),
		ParasitismEcologicalMax:    getEnvFloatOrDefault("GODEL_PARASITISM_ECOLOGICAL_MAX", -0.2),

		ParanoidWindowHours:        getEnvFloatOrDefault("GODEL_PARANOID_WINDOW_HOURS", 12.0),
		ParanoidSampleCount:        getEnvIntOrDefault("GODEL_PARANOID_SAMPLE_COUNT", 20),
		ParanoidBiasMin:            getEnvFloatOrDefault("GODEL_PARANOID_BIAS_MIN", 0.3),
		ParanoidThreatConc:         getEnvFloatOrDefault("GODEL_PARANOID_THREAT_CONC", 0.8),
		SolipsismSampleCount:       getEnvIntOrDefault("GODEL_SOLIPSISM_SAMPLE_COUNT", 10),
		SolipsismRatioMin:          getEnvFloatOrDefault("GODEL_SOLIPSISM_RATIO_MIN", 0.5),
		NarcissismWindowHours:      getEnvFloatOrDefault("GODEL_NARCISSISM_WINDOW_HOURS", 12.0),
		NarcissismSelfFraction:     getEnvFloatOrDefault("GODEL_NARCISSISM_SELF_FRACTION", 0.8),
		NarcissismExternalFraction: getEnvFloatOrDefault("GODEL_NARCISSISM_EXTERNAL_FRACTION", 0.2),
	}
}

func loadClusteringConfig() ClusteringConfig {
	return ClusteringConfig{
		WindowHours:       getEnvFloatOrDefault("GODEL_CLUSTER_WINDOW_HOURS", 24.0),
		CouplingThreshold: getEnvFloatOrDefault("GODEL_CLUSTER_COUPLING_THRESHOLD", 0.8),
		MinClusterSize:    getEnvIntOrDefault("GODEL_CLUSTER_MIN_SIZE", 3),
		ConfidenceMin:     getEnvFloatOrDefault("GODEL_CLUSTER_CONFIDENCE_MIN", 0.5),
	}
}

func loadEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		DT:               getEnvFloatOrDefault("GODEL_EVOLUTION_DT", 0.01),
		FiniteDiffH:      getEnvFloatOrDefault("GODEL_EVOLUTION_FINITE_DIFF_H", 1e-6),
		CThreshold:       getEnvFloatOrDefault("GODEL_EVOLUTION_C_THRESHOLD", 0.7),
		AutopoieticAlpha: getEnvFloatOrDefault("GODEL_AUTOPOIETIC_ALPHA", 1.0),
		AutopoieticBeta:  getEnvFloatOrDefault("GODEL_AUTOPOIETIC_BETA", 2.0),
		HumilityK:        getEnvFloatOrDefault("GODEL_HUMILITY_K", 2.0),
		ROpt:             getEnvFloatOrDefault("GODEL_R_OPT", 0.5),
	}
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:      url,
		User:     getEnvOrDefault("DB_USER", ""),
		Password: getEnvOrDefault("DB_PASS", ""),
		Name:     getEnvOrDefault("DB_NAME", ""),
		Host:     getEnvOrDefault("DB_HOST", ""),
		Port:     getEnvIntOrDefault("DB_PORT", 5432),
		SSLMode:  getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Dimensions.ActiveDim <= 0 {
		return errors.ConfigInvalid("active dimension must be positive")
	}
	if cfg.Dimensions.ActiveDim > cfg.Dimensions.StorageDim {
		return errors.ConfigInvalid("active dimension cannot exceed storage dimension")
	}
	if cfg.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	return nil
}

// Helper functions for environment variable parsing, the teacher's pattern.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
