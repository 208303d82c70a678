package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"HoldingsWatch/internal/model"
	"HoldingsWatch/internal/notifier"
)

// ReportRunner builds a report for one fund. Satisfied by report.Runner.
type ReportRunner interface {
	Run(ctx context.Context, fund string) (*model.Report, error)
}

// Scheduler runs report jobs on a cron schedule. Runs are serialized so that
// fetching stays one symbol at a time.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   ReportRunner
	Notifier notifier.Notifier
	Funds    []string
	Ctx      context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner ReportRunner, n notifier.Notifier, funds []string) *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Runner:   runner,
		Notifier: n,
		Funds:    funds,
		Ctx:      ctx,
	}
}

// Register adds one report job per fund for a six-field cron expression.
// Each job is skipped while its previous run is still going.
func (s *Scheduler) Register(spec string) error {
	for _, fund := range s.Funds {
		if _, err := s.Cron.AddFunc(spec, func() { s.reportTask(fund) }); err != nil {
			return fmt.Errorf("register report task for %s: %w", fund, err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow reports every configured fund immediately and returns the first error.
func (s *Scheduler) RunNow() error {
	var first error
	for _, fund := range s.Funds {
		if err := s.RunFund(s.Ctx, fund); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RunFund builds and delivers the report for one fund.
func (s *Scheduler) RunFund(ctx context.Context, fund string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rep, err := s.Runner.Run(ctx, fund)
	if err != nil {
		log.Printf("[ERROR] report %s: %v", fund, err)
		return err
	}
	if err := s.Notifier.Notify(ctx, notifier.FormatReport(rep)); err != nil {
		log.Printf("[ERROR] deliver report %s: %v", fund, err)
		return fmt.Errorf("deliver report %s: %w", fund, err)
	}
	return nil
}

func (s *Scheduler) reportTask(fund string) {
	log.Printf("[INFO] running scheduled report for %s", fund)
	_ = s.RunFund(s.Ctx, fund)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToLower(fields[0]) {
	case "/report":
		funds := s.Funds
		if len(fields) > 1 {
			funds = fields[1:]
		}
		for _, fund := range funds {
			if err := s.RunFund(ctx, fund); err != nil {
				return fmt.Sprintf("report %s failed: %v", strings.ToUpper(fund), err)
			}
		}
		return ""
	case "/funds":
		return "Funds: " + strings.Join(s.Funds, ", ")
	default:
		return "Commands:\n/report [FUND...]\n/funds"
	}
}
