package services

import (
	"context"
	"time"

	"github.com/speedwaysuk/speedwaysukireland-sub005/internal/domain"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/logger"
	"github.com/speedwaysuk/speedwaysukireland-sub005/pkg/utils"

	"github.com/robfig/cron/v3"
)

// CronAuctionScheduler persists end-of-auction jobs in MySQL and sweeps them
// on a cron tick. Only the elected leader executes jobs, so multiple
// instances can run the sweep safely.
type CronAuctionScheduler struct {
	cron           *cron.Cron
	repo           domain.SchedulerRepository
	auctionMgr     *AuctionManager
	leaderElection domain.LeaderElection
	instanceID     string
	log            logger.Logger
}

func NewCronAuctionScheduler(
	repo domain.SchedulerRepository,
	auctionMgr *AuctionManager,
	leaderElection domain.LeaderElection,
	instanceID string,
	log logger.Logger,
) *CronAuctionScheduler {
	return &CronAuctionScheduler{
		cron:           cron.New(cron.WithSeconds()),
		repo:           repo,
		auctionMgr:     auctionMgr,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		log:            log,
	}
}

func (s *CronAuctionScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting auction scheduler")

	_, err := s.cron.AddFunc("@every 15s", func() {
		s.processPendingJobs(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronAuctionScheduler) Stop() error {
	s.log.Info("Stopping auction scheduler")
	s.cron.Stop()
	return nil
}

func (s *CronAuctionScheduler) ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error {
	job := &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobEndAuction,
		RunAt:     endTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	}

	return s.repo.CreateJob(ctx, job)
}

func (s *CronAuctionScheduler) RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error {
	if err := s.repo.CancelJobsForAuction(ctx, auctionID); err != nil {
		return err
	}

	return s.ScheduleAuctionEnd(ctx, auctionID, newEndTime)
}

func (s *CronAuctionScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return s.repo.CancelJobsForAuction(ctx, auctionID)
}

func (s *CronAuctionScheduler) processPendingJobs(ctx context.Context) {
	isLeader, err := s.leaderElection.IsLeader(ctx, s.instanceID)
	if err != nil {
		s.log.Error("Failed to check leadership", "error", err)
		return
	}
	if !isLeader {
		return
	}

	jobs, err := s.repo.GetPendingJobs(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to get pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		s.log.Info("Processing job", "job_id", job.ID, "type", job.JobType, "auction_id", job.AuctionID)

		if job.JobType != domain.JobEndAuction {
			s.log.Warn("Unknown job type", "job_id", job.ID, "type", job.JobType)
			continue
		}

		if err := s.auctionMgr.CloseAuction(ctx, job.AuctionID); err != nil {
			s.log.Error("Failed to execute job", "job_id", job.ID, "error", err)
			// Leave pending, will retry on the next sweep
			continue
		}

		if err := s.repo.UpdateJobStatus(ctx, job.ID, domain.JobExecuted); err != nil {
			s.log.Error("Failed to mark job executed", "job_id", job.ID, "error", err)
		}
	}
}
