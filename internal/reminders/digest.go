// Package reminders publishes per-user digests of overdue and soon-due tasks.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const ChannelPrefix = "reminders:"

func Channel(userID string) string {
	return ChannelPrefix + userID
}

type TaskSource interface {
	ListOpenWithDueDate(ctx context.Context, before time.Time) ([]domain.TaskView, error)
}

// Publisher is the part of *redis.Client the digest needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type Digest struct {
	UserID      string            `json:"user_id"`
	Overdue     []domain.TaskView `json:"overdue"`
	DueSoon     []domain.TaskView `json:"due_soon"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Summary describes one digest run.
type Summary struct {
	Tasks     int
	Users     int
	Published int
	Failed    int
}

type Notifier struct {
	tasks TaskSource
	pub   Publisher
	agg   *stats.Aggregator
	clock func() time.Time
	log   *logrus.Logger
}

func NewNotifier(tasks TaskSource, pub Publisher, agg *stats.Aggregator, log *logrus.Logger) *Notifier {
	if agg == nil {
		agg = stats.NewAggregator(0)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifier{tasks: tasks, pub: pub, agg: agg, clock: time.Now, log: log}
}

// Build groups open tasks by project owner and by assignee and classifies them
// against one reference time. Users with nothing to report are left out.
func (n *Notifier) Build(tasks []domain.TaskView, now time.Time) []Digest {
	byUser := make(map[string][]domain.TaskView)
	seen := make(map[string]map[string]struct{})
	var order []string
	add := func(userID string, v domain.TaskView) {
		if userID == "" {
			return
		}
		ids, ok := seen[userID]
		if !ok {
			ids = make(map[string]struct{})
			seen[userID] = ids
			order = append(order, userID)
		}
		if _, dup := ids[v.ID]; dup {
			return
		}
		ids[v.ID] = struct{}{}
		byUser[userID] = append(byUser[userID], v)
	}
	for _, v := range tasks {
		add(v.ProjectOwnerID, v)
		if v.AssigneeID != nil {
			add(*v.AssigneeID, v)
		}
	}

	out := make([]Digest, 0, len(order))
	for _, userID := range order {
		d := Digest{
			UserID:      userID,
			Overdue:     n.agg.Overdue(byUser[userID], now),
			DueSoon:     n.agg.DueSoon(byUser[userID], now),
			GeneratedAt: now,
		}
		if len(d.Overdue) == 0 && len(d.DueSoon) == 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Run loads every open task due within the window and publishes one digest per user.
// A failed publish is counted and logged; the remaining users are still notified.
func (n *Notifier) Run(ctx context.Context) (Summary, error) {
	now := n.clock()
	tasks, err := n.tasks.ListOpenWithDueDate(ctx, now.Add(n.agg.DueSoonWindow))
	if err != nil {
		return Summary{}, fmt.Errorf("load open tasks: %w", err)
	}

	digests := n.Build(tasks, now)
	sum := Summary{Tasks: len(tasks), Users: len(digests)}
	for i := range digests {
		d := &digests[i]
		payload, err := json.Marshal(d)
		if err != nil {
			return sum, fmt.Errorf("marshal digest: %w", err)
		}
		if err := n.pub.Publish(ctx, Channel(d.UserID), payload).Err(); err != nil {
			sum.Failed++
			n.log.WithError(err).WithField("user_id", d.UserID).Warn("publish reminder digest")
			continue
		}
		sum.Published++
	}

	n.log.WithFields(logrus.Fields{
		"tasks":     sum.Tasks,
		"users":     sum.Users,
		"published": sum.Published,
		"failed":    sum.Failed,
	}).Info("reminder digest sent")
	return sum, nil
}
