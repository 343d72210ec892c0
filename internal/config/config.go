package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"TontineSim/internal/ledger"
	"TontineSim/internal/model"

	"gopkg.in/yaml.v3"
)

// now is replaced in tests.
var now = time.Now

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Tontine      model.AssociationConfig
	Participants []model.MemberArchetype
	Simulation   Simulation
	Database     struct {
		SQLitePath string
	}
	Schedule struct {
		Cron   string
		Listen string
	}
	Telegram struct {
		BotToken string
		ChatID   string
		Proxy    string
	}
}

// Simulation controls a single run.
type Simulation struct {
	Months    int
	Seed      uint64
	StartDate time.Time
	OutputDir string
}

// file mirrors the on-disk layout. Pointers mark keys whose absence matters.
type file struct {
	Tontine      fileTontine       `yaml:"tontine"`
	Participants []fileParticipant `yaml:"participants"`
	Simulation   struct {
		Months    *int    `yaml:"months"`
		Seed      *uint64 `yaml:"seed"`
		StartDate string  `yaml:"start_date"`
		OutputDir string  `yaml:"output_dir"`
	} `yaml:"simulation"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		Cron   string `yaml:"cron"`
		Listen string `yaml:"listen"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Proxy    string `yaml:"proxy"`
	} `yaml:"telegram"`
}

type fileTontine struct {
	NumParticipantsStart          *int     `yaml:"num_participants_start"`
	NumParticipantsMin            *int     `yaml:"num_participants_min"`
	NumPartipiantsMin             *int     `yaml:"num_partipiants_min"` // legacy spelling
	MonthlyContrib                *float64 `yaml:"monthly_contrib"`
	MonthlyInterestRate           *float64 `yaml:"monthly_interest_rate"`
	ArrivalProbability            *float64 `yaml:"arrival_probability"`
	CycleDurationMonths           *int     `yaml:"cycle_duration_months"`
	MaxCycles                     *int     `yaml:"max_cycles"`
	EmergencyFundPercentage       *float64 `yaml:"emergency_fund_percentage"`
	MaxLoanAmount                 *float64 `yaml:"max_loan_amount"`
	LatePaymentPenalty            *float64 `yaml:"late_payment_penalty"`
	MaxSimultaneousLoans          *int     `yaml:"max_simultaneous_loans"`
	MinMembershipMonths           *int     `yaml:"min_membership_months"`
	MonthlyDistributionPercentage *float64 `yaml:"monthly_distribution_percentage"`
}

type fileParticipant struct {
	ID                     string   `yaml:"id"`
	Name                   string   `yaml:"name"`
	DefaultProbability     *float64 `yaml:"default_probability"`
	LoanProbability        *float64 `yaml:"loan_prob"`
	RepayProbability       *float64 `yaml:"loan_reemboursement_prob"`
	ExitProbability        *float64 `yaml:"exit_probability"`
	MaxConsecutiveDefaults *int     `yaml:"max_consecutive_defaults"`
}

// Load reads config from a YAML (or JSON) file, then applies environment
// variable overrides and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	raw := &file{}
	if err := yaml.Unmarshal(data, raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{}
	if err := raw.Tontine.apply(&cfg.Tontine, len(raw.Participants)); err != nil {
		return nil, err
	}
	for i, p := range raw.Participants {
		arch, err := p.archetype(i)
		if err != nil {
			return nil, err
		}
		cfg.Participants = append(cfg.Participants, arch)
	}

	cfg.Database.SQLitePath = raw.Database.SQLitePath
	cfg.Schedule.Cron = raw.Schedule.Cron
	cfg.Schedule.Listen = raw.Schedule.Listen
	cfg.Telegram.BotToken = raw.Telegram.BotToken
	cfg.Telegram.ChatID = raw.Telegram.ChatID
	cfg.Telegram.Proxy = raw.Telegram.Proxy
	cfg.Simulation.OutputDir = raw.Simulation.OutputDir
	if raw.Simulation.Months != nil {
		cfg.Simulation.Months = *raw.Simulation.Months
	} else {
		cfg.Simulation.Months = cfg.Tontine.MaxCycles * cfg.Tontine.CycleDurationMonths
	}
	cfg.Simulation.Seed = 1
	if raw.Simulation.Seed != nil {
		cfg.Simulation.Seed = *raw.Simulation.Seed
	}
	if raw.Simulation.StartDate != "" {
		start, err := time.Parse(dateLayout, raw.Simulation.StartDate)
		if err != nil {
			return nil, fmt.Errorf("parse simulation.start_date: %w", err)
		}
		cfg.Simulation.StartDate = start
	}

	// Environment variable overrides
	if v := os.Getenv("TONTINE_MONTHS"); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse TONTINE_MONTHS: %w", err)
		}
		cfg.Simulation.Months = months
	}
	if v := os.Getenv("TONTINE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse TONTINE_SEED: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("TONTINE_OUTPUT_DIR"); v != "" {
		cfg.Simulation.OutputDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TONTINE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("TONTINE_LISTEN"); v != "" {
		cfg.Schedule.Listen = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Telegram.Proxy = v
	}

	// Defaults
	if cfg.Simulation.OutputDir == "" {
		cfg.Simulation.OutputDir = "simulation_results"
	}
	if cfg.Simulation.StartDate.IsZero() {
		t := now().UTC()
		cfg.Simulation.StartDate = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 0 * * * *"
	}
	if cfg.Schedule.Listen == "" {
		cfg.Schedule.Listen = ":9090"
	}

	return cfg, nil
}

func (t fileTontine) apply(c *model.AssociationConfig, participants int) error {
	floor := t.NumParticipantsMin
	if floor == nil {
		floor = t.NumPartipiantsMin
	}
	required := []struct {
		key string
		ok  bool
	}{
		{"tontine.num_participants_min", floor != nil},
		{"tontine.monthly_contrib", t.MonthlyContrib != nil},
		{"tontine.monthly_interest_rate", t.MonthlyInterestRate != nil},
		{"tontine.arrival_probability", t.ArrivalProbability != nil},
	}
	for _, r := range required {
		if !r.ok {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	c.NumParticipantsStart = intOr(t.NumParticipantsStart, participants)
	c.NumParticipantsMin = *floor
	c.MonthlyContrib = *t.MonthlyContrib
	c.MonthlyInterestRate = *t.MonthlyInterestRate
	c.ArrivalProbability = *t.ArrivalProbability
	c.CycleDurationMonths = intOr(t.CycleDurationMonths, 12)
	c.MaxCycles = intOr(t.MaxCycles, 5)
	c.EmergencyFundPercentage = floatOr(t.EmergencyFundPercentage, 0.1)
	c.MaxLoanAmount = floatOr(t.MaxLoanAmount, 0)
	c.LatePaymentPenalty = floatOr(t.LatePaymentPenalty, 0.05)
	c.MaxSimultaneousLoans = intOr(t.MaxSimultaneousLoans, 3)
	c.MinMembershipMonths = intOr(t.MinMembershipMonths, 3)
	c.MonthlyDistributionPercentage = floatOr(t.MonthlyDistributionPercentage, 0.5)
	return nil
}

func (p fileParticipant) archetype(i int) (model.MemberArchetype, error) {
	required := []struct {
		key string
		v   *float64
	}{
		{"default_probability", p.DefaultProbability},
		{"loan_prob", p.LoanProbability},
		{"loan_reemboursement_prob", p.RepayProbability},
		{"exit_probability", p.ExitProbability},
	}
	for _, r := range required {
		if r.v == nil {
			return model.MemberArchetype{}, fmt.Errorf("participants[%d].%s is required", i, r.key)
		}
	}

	arch := model.MemberArchetype{
		ID:                     p.ID,
		Name:                   p.Name,
		DefaultProbability:     *p.DefaultProbability,
		LoanProbability:        *p.LoanProbability,
		RepayProbability:       *p.RepayProbability,
		ExitProbability:        *p.ExitProbability,
		MaxConsecutiveDefaults: intOr(p.MaxConsecutiveDefaults, 3),
	}
	if arch.ID == "" {
		arch.ID = ledger.MemberID(i + 1)
	}
	if arch.Name == "" {
		arch.Name = ledger.MemberName(i + 1)
	}
	return arch, nil
}

// Validate checks the association parameters and every participant.
func (c *Config) Validate() error {
	t := c.Tontine
	if len(c.Participants) == 0 {
		return fmt.Errorf("participants: at least one participant is required")
	}

	fractions := []struct {
		key string
		v   float64
	}{
		{"tontine.monthly_interest_rate", t.MonthlyInterestRate},
		{"tontine.arrival_probability", t.ArrivalProbability},
		{"tontine.emergency_fund_percentage", t.EmergencyFundPercentage},
		{"tontine.late_payment_penalty", t.LatePaymentPenalty},
		{"tontine.monthly_distribution_percentage", t.MonthlyDistributionPercentage},
	}
	for _, f := range fractions {
		if f.v < 0 || f.v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", f.key, f.v)
		}
	}

	if t.MonthlyContrib < 0 {
		return fmt.Errorf("tontine.monthly_contrib must be non-negative")
	}
	if t.MaxLoanAmount < 0 {
		return fmt.Errorf("tontine.max_loan_amount must be non-negative")
	}
	if t.NumParticipantsStart < 0 {
		return fmt.Errorf("tontine.num_participants_start must be non-negative")
	}
	if t.NumParticipantsMin < 0 {
		return fmt.Errorf("tontine.num_participants_min must be non-negative")
	}
	if t.NumParticipantsMin > t.NumParticipantsStart {
		return fmt.Errorf("tontine.num_participants_min (%d) exceeds num_participants_start (%d)",
			t.NumParticipantsMin, t.NumParticipantsStart)
	}
	if t.CycleDurationMonths <= 0 {
		return fmt.Errorf("tontine.cycle_duration_months must be positive")
	}
	if t.MaxCycles < 0 {
		return fmt.Errorf("tontine.max_cycles must be non-negative")
	}
	if t.MaxSimultaneousLoans < 0 {
		return fmt.Errorf("tontine.max_simultaneous_loans must be non-negative")
	}
	if t.MinMembershipMonths < 0 {
		return fmt.Errorf("tontine.min_membership_months must be non-negative")
	}
	if c.Simulation.Months < 0 {
		return fmt.Errorf("simulation.months must be non-negative")
	}

	seen := make(map[string]bool, len(c.Participants))
	for i, p := range c.Participants {
		if seen[p.ID] {
			return fmt.Errorf("participants[%d].id %q is duplicated", i, p.ID)
		}
		seen[p.ID] = true

		probs := []struct {
			key string
			v   float64
		}{
			{"default_probability", p.DefaultProbability},
			{"loan_prob", p.LoanProbability},
			{"loan_reemboursement_prob", p.RepayProbability},
			{"exit_probability", p.ExitProbability},
		}
		for _, pr := range probs {
			if pr.v < 0 || pr.v > 1 {
				return fmt.Errorf("participants[%d].%s must be in [0, 1], got %v", i, pr.key, pr.v)
			}
		}
		if p.MaxConsecutiveDefaults < 0 {
			return fmt.Errorf("participants[%d].max_consecutive_defaults must be non-negative", i)
		}
	}
	return nil
}

// NotificationsEnabled reports whether Telegram credentials are present.
func (c *Config) NotificationsEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
