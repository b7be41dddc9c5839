// Package doctor runs environment diagnostics so operators can see why a
// scheduled post would fail before the scheduler hits it at midnight.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/adpost-go/internal/domain"
	"github.com/doeshing/adpost-go/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Store          ports.HistoryStore
	Policy         ports.PolicyService
	Publisher      ports.Publisher
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded (format %s)", cfg.ConfigFormatVersion)))

	checks = append(checks, storageCheck(cfg.Storage))
	checks = append(checks, historyCheck(s.Store))
	checks = append(checks, policyCheck(s.Policy, cfg.Policy))
	checks = append(checks, modelKeyCheck(cfg.Models))
	checks = append(checks, publisherCheck(ctx, s.Publisher, cfg.Posting))

	return domain.HealthReport{Checks: checks}, nil
}

// storageCheck verifies the history root exists and is writable.
func storageCheck(settings domain.StorageSettings) domain.HealthCheck {
	if err := os.MkdirAll(settings.Root, domain.DirectoryPermissions); err != nil {
		return fail("Storage root", fmt.Sprintf("%s: %v", settings.Root, err))
	}
	probe := filepath.Join(settings.Root, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), domain.HistoryFilePermissions); err != nil {
		return fail("Storage root", fmt.Sprintf("not writable: %v", err))
	}
	_ = os.Remove(probe)
	return ok("Storage root", fmt.Sprintf("%s writable (%s backend)", settings.Root, settings.Backend))
}

// historyCheck confirms every category loads. Corrupt files degrade to empty
// rather than erroring, so a failure here means something structural.
func historyCheck(store ports.HistoryStore) domain.HealthCheck {
	if store == nil {
		return warn("History store", "not initialized")
	}
	total := 0
	for _, cat := range domain.Categories() {
		records, err := store.Load(cat)
		if err != nil {
			return fail("History store", fmt.Sprintf("category %s: %v", cat, err))
		}
		total += len(records)
	}
	return ok("History store", fmt.Sprintf("%d records across %d categories", total, len(domain.Categories())))
}

func policyCheck(policy ports.PolicyService, settings domain.PolicySettings) domain.HealthCheck {
	if !settings.Enabled {
		return warn("Content policy", "disabled in config")
	}
	if policy == nil {
		return fail("Content policy", "enabled but not initialized")
	}
	// an empty draft must evaluate cleanly if the rules compiled
	if _, err := policy.Evaluate(domain.Draft{Caption: "probe"}); err != nil {
		return fail("Content policy", err.Error())
	}
	return ok("Content policy", "rules loaded")
}

func modelKeyCheck(models []domain.ModelDefinition) domain.HealthCheck {
	if len(models) == 0 {
		return warn("Models", "no models configured")
	}
	for _, model := range models {
		if model.APIFormat == domain.APIFormatHeuristic {
			continue
		}
		if model.AuthEnvVar != "" && os.Getenv(model.AuthEnvVar) == "" {
			return warn("API keys", fmt.Sprintf("%s not set (model %s)", model.AuthEnvVar, model.Name))
		}
	}
	return ok("API keys", "present for configured models")
}

func publisherCheck(ctx context.Context, publisher ports.Publisher, settings domain.PostingSettings) domain.HealthCheck {
	if settings.AccessTokenEnvVar != "" && os.Getenv(settings.AccessTokenEnvVar) == "" {
		return warn("Publisher", fmt.Sprintf("%s not set, publishing will fail", settings.AccessTokenEnvVar))
	}
	if publisher == nil {
		return warn("Publisher", "not initialized")
	}
	if err := publisher.Verify(ctx); err != nil {
		return warn("Publisher", fmt.Sprintf("credential check failed: %v", err))
	}
	return ok("Publisher", fmt.Sprintf("account %s reachable", settings.AccountID))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
