package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/webnovel/internal/service"
)

const publishBatchSize = 100

// PublishScheduledJob flips scheduled chapters to published once their
// activation time has passed.
type PublishScheduledJob struct {
	chapters *service.ChapterService
}

func NewPublishScheduledJob(chapters *service.ChapterService) *PublishScheduledJob {
	return &PublishScheduledJob{chapters: chapters}
}

func (j *PublishScheduledJob) Name() string {
	return "publish_scheduled"
}

func (j *PublishScheduledJob) Run(ctx context.Context) error {
	if j.chapters == nil {
		return nil
	}
	published, err := j.chapters.PublishDue(ctx, publishBatchSize)
	if err != nil {
		return err
	}
	if published > 0 {
		logutil.GetLogger(ctx).Info("published scheduled chapters", zap.Int("count", published))
	}
	return nil
}
