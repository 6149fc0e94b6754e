package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// Policy is the parsed triage policy file: one stale job and an optional
// release-close job. YAML keys follow the option names of the stale-bot
// configuration surface (days-before-stale, exempt-issue-labels, ...).
type Policy struct {
	Stale        model.StalePolicy
	ReleaseClose model.ReleasePolicy
}

// stalePolicyYAML mirrors model.StalePolicy for YAML decoding.
type stalePolicyYAML struct {
	Schedule                string   `yaml:"schedule"`
	DaysBeforeStale         *int     `yaml:"days-before-stale"`
	DaysBeforeClose         *int     `yaml:"days-before-close"`
	StaleLabel              string   `yaml:"stale-issue-label"`
	StaleMessage            string   `yaml:"stale-issue-message"`
	OnlyLabels              []string `yaml:"only-labels"`
	ExemptLabels            []string `yaml:"exempt-issue-labels"`
	LabelsToRemoveWhenStale []string `yaml:"labels-to-remove-when-stale"`
	OperationsPerRun        *int     `yaml:"operations-per-run"`
	CloseReason             string   `yaml:"close-issue-reason"`
}

// releasePolicyYAML mirrors model.ReleasePolicy for YAML decoding.
type releasePolicyYAML struct {
	OnlyLabels  []string `yaml:"only-labels"`
	Message     string   `yaml:"message"`
	CloseReason string   `yaml:"close-issue-reason"`
}

type policyYAML struct {
	Stale        stalePolicyYAML   `yaml:"stale"`
	ReleaseClose releasePolicyYAML `yaml:"release-close"`
}

// Defaults matching the conventional stale-bot configuration.
const (
	defaultSchedule         = "30 1 * * *"
	defaultDaysBeforeStale  = 60
	defaultDaysBeforeClose  = 7
	defaultStaleLabel       = "stale"
	defaultOperationsPerRun = 150
)

const defaultStaleMessage = "This issue has been automatically marked as stale " +
	"because it has not had recent activity. It will be closed if no further " +
	"activity occurs. Thank you for your contributions."

// LoadPolicy reads and validates the triage policy from the given YAML file.
// Missing optional fields receive defaults; an invalid or unreadable file is
// a fatal configuration error.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var raw policyYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	stale := model.StalePolicy{
		Schedule:                raw.Stale.Schedule,
		DaysBeforeStale:         defaultDaysBeforeStale,
		DaysBeforeClose:         defaultDaysBeforeClose,
		StaleLabel:              raw.Stale.StaleLabel,
		StaleMessage:            raw.Stale.StaleMessage,
		OnlyLabels:              raw.Stale.OnlyLabels,
		ExemptLabels:            raw.Stale.ExemptLabels,
		LabelsToRemoveWhenStale: raw.Stale.LabelsToRemoveWhenStale,
		OperationsPerRun:        defaultOperationsPerRun,
		CloseReason:             model.CloseReasonNotPlanned,
	}
	if raw.Stale.Schedule == "" {
		stale.Schedule = defaultSchedule
	}
	if raw.Stale.DaysBeforeStale != nil {
		stale.DaysBeforeStale = *raw.Stale.DaysBeforeStale
	}
	if raw.Stale.DaysBeforeClose != nil {
		stale.DaysBeforeClose = *raw.Stale.DaysBeforeClose
	}
	if stale.StaleLabel == "" {
		stale.StaleLabel = defaultStaleLabel
	}
	if stale.StaleMessage == "" {
		stale.StaleMessage = defaultStaleMessage
	}
	if raw.Stale.OperationsPerRun != nil {
		stale.OperationsPerRun = *raw.Stale.OperationsPerRun
	}
	if raw.Stale.CloseReason != "" {
		stale.CloseReason = model.CloseReason(raw.Stale.CloseReason)
	}

	release := model.ReleasePolicy{
		OnlyLabels:  raw.ReleaseClose.OnlyLabels,
		Message:     raw.ReleaseClose.Message,
		CloseReason: model.CloseReasonCompleted,
	}
	if raw.ReleaseClose.CloseReason != "" {
		release.CloseReason = model.CloseReason(raw.ReleaseClose.CloseReason)
	}

	if err := stale.Validate(); err != nil {
		return nil, fmt.Errorf("stale policy: %w", err)
	}
	if err := release.Validate(); err != nil {
		return nil, fmt.Errorf("release-close policy: %w", err)
	}

	return &Policy{Stale: stale, ReleaseClose: release}, nil
}
