// Package metrics counts what the CLI did and snapshots the club document as
// gauges. There is no server: the registry is written to a node_exporter
// textfile after each command.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/db"
)

const namespace = "club_duties"

// Signup results
const (
	ResultOK              = "ok"
	ResultAlreadySignedUp = "already_signed_up"
	ResultFull            = "full"
	ResultError           = "error"
)

// Metrics holds the collectors of one CLI process
type Metrics struct {
	registry *prometheus.Registry

	signups       *prometheus.CounterVec
	withdrawals   prometheus.Counter
	payouts       prometheus.Counter
	payoutAmount  prometheus.Counter
	imports       *prometheus.CounterVec
	reminders     *prometheus.CounterVec
	storageErrors *prometheus.CounterVec

	members     *prometheus.GaugeVec
	revenue     prometheus.Gauge
	extraDuties prometheus.Gauge
	owed        prometheus.Gauge
	tasks       *prometheus.GaugeVec
	openSlots   prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Signup attempts by result.",
		}, []string{"result"}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawals_total",
			Help:      "Participants removed from tasks.",
		}),
		payouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payouts_total",
			Help:      "Confirmed bar duty payouts.",
		}),
		payoutAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payout_amount_euros_total",
			Help:      "Sum of confirmed payouts.",
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_members_total",
			Help:      "Import candidates by outcome.",
		}, []string{"outcome"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminder emails by result.",
		}, []string{"result"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed storage operations.",
		}, []string{"op"}),
		members: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "members",
			Help:      "Members by derived status.",
		}, []string{"status"}),
		revenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fee_revenue_euros",
			Help:      "Participation fees paid.",
		}),
		extraDuties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extra_bar_duties",
			Help:      "Completed bar duties beyond the first, summed over members.",
		}),
		owed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "owed_euros",
			Help:      "Bar duty payouts not yet confirmed.",
		}),
		tasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks",
			Help:      "Tasks by type and state.",
		}, []string{"type", "state"}),
		openSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_slots",
			Help:      "Free places on tasks that are not completed.",
		}),
	}

	m.registry.MustRegister(
		m.signups, m.withdrawals, m.payouts, m.payoutAmount, m.imports,
		m.reminders, m.storageErrors, m.members, m.revenue, m.extraDuties,
		m.owed, m.tasks, m.openSlots,
	)
	return m
}

// Registry exposes the registry, e.g. for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSignup counts a signup attempt
func (m *Metrics) ObserveSignup(err error) {
	m.signups.WithLabelValues(signupResult(err)).Inc()
}

func signupResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, services.ErrAlreadySignedUp):
		return ResultAlreadySignedUp
	case errors.Is(err, services.ErrTaskFull):
		return ResultFull
	}
	return ResultError
}

// ObserveWithdrawal counts a removal from a task
func (m *Metrics) ObserveWithdrawal(err error) {
	if err == nil {
		m.withdrawals.Inc()
	}
}

// ObservePayout counts a payout that actually changed the document
func (m *Metrics) ObservePayout(result *services.PayoutResult) {
	if result == nil || !result.Paid {
		return
	}
	m.payouts.Inc()
	m.payoutAmount.Add(float64(result.Amount))
}

// ObserveImport counts added and skipped candidates
func (m *Metrics) ObserveImport(result *services.ImportResult) {
	if result == nil {
		return
	}
	m.imports.WithLabelValues("added").Add(float64(len(result.Added)))
	m.imports.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
}

// ObserveReminders counts reminder outcomes; dry runs are counted separately
func (m *Metrics) ObserveReminders(result *services.ReminderResult) {
	if result == nil {
		return
	}
	sent := "sent"
	if result.DryRun {
		sent = "dry_run"
	}
	m.reminders.WithLabelValues(sent).Add(float64(len(result.Sent)))
	m.reminders.WithLabelValues("failed").Add(float64(len(result.Failed)))
	m.reminders.WithLabelValues("no_email").Add(float64(len(result.NoEmail)))
}

// ObserveError counts err when it is a storage failure. Commands report
// their final error here once.
func (m *Metrics) ObserveError(err error) {
	var storageErr *db.StorageError
	if errors.As(err, &storageErr) {
		m.storageErrors.WithLabelValues(storageErr.Op).Inc()
	}
}

// UpdateDocument sets the gauges from the current document
func (m *Metrics) UpdateDocument(doc *model.Document, rates duties.Rates) {
	stats := duties.ComputeDashboardStats(doc, rates)
	m.members.WithLabelValues(string(duties.StatusTaskDone)).Set(float64(stats.TaskDone))
	m.members.WithLabelValues(string(duties.StatusPaid)).Set(float64(stats.Paid))
	m.members.WithLabelValues(string(duties.StatusNothingDone)).Set(float64(stats.Nothing))
	m.revenue.Set(float64(stats.Revenue))
	m.extraDuties.Set(float64(stats.TotalExtraDuties))
	m.owed.Set(float64(stats.TotalOwed))

	m.tasks.Reset()
	open := 0
	for _, t := range doc.Tasks {
		state := "open"
		if t.Completed {
			state = "completed"
		} else {
			open += duties.OpenSlots(t)
		}
		m.tasks.WithLabelValues(string(t.Type), state).Inc()
	}
	m.openSlots.Set(float64(open))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically so node_exporter never reads half of it.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
