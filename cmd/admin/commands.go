package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"citizenpulse/backend/internal/analysis"
	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"
	"citizenpulse/backend/internal/workflow"
)

func setRole(ctx context.Context, store storage.Storage, out io.Writer, username, role string) error {
	r := models.UserRole(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return apperr.Invalid("role", "must be citizen, official or admin")
	}

	profile, err := store.GetProfileByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %s: %w", username, err)
	}
	if profile.Role == r {
		fmt.Fprintf(out, "User %s is already %s.\n", username, r)
		return nil
	}
	if err := store.UpdateProfileRole(ctx, profile.ID, r); err != nil {
		return err
	}
	fmt.Fprintf(out, "User %s is now %s (was %s).\n", username, r, profile.Role)
	return nil
}

type statusChange struct {
	Number string
	Status string
	Note   string
	As     string
}

func setStatus(ctx context.Context, store storage.Storage, pub events.Publisher, out io.Writer, sc statusChange) error {
	operator, err := store.GetProfileByUsername(ctx, sc.As)
	if err != nil {
		return fmt.Errorf("operator %s: %w", sc.As, err)
	}
	// The stored role decides, so a demoted account cannot be used here.
	actor := &auth.Actor{UserID: operator.ID, Role: operator.Role}

	r, err := store.GetReportByNumber(ctx, strings.ToUpper(strings.TrimSpace(sc.Number)))
	if err != nil {
		return fmt.Errorf("report %s: %w", sc.Number, err)
	}

	entry, err := workflow.NewAuthority(store, pub).ChangeStatus(ctx, actor, r.ID, models.ReportStatus(sc.Status), sc.Note)
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Fprintf(out, "Report %s is already %s.\n", r.ReportNumber, r.Status)
		return nil
	}
	fmt.Fprintf(out, "Report %s: %s\n", r.ReportNumber, entry.Message)
	return nil
}

func printStats(ctx context.Context, counter analysis.Counter, out io.Writer) error {
	stats, err := analysis.Dashboard(ctx, counter)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Total:    %d\n", stats.Total)
	fmt.Fprintf(out, "New:      %d\n", stats.New)
	fmt.Fprintf(out, "Active:   %d\n", stats.Active)
	fmt.Fprintf(out, "Resolved: %d\n", stats.Resolved)
	return nil
}
