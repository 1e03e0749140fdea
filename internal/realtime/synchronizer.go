// Package realtime keeps subscribed clients' views of applications and job
// posts in sync with committed changes.
package realtime

import (
	"JobBridge-backend/internal/database"
	"JobBridge-backend/internal/events"
	"JobBridge-backend/internal/metrics"
	"JobBridge-backend/internal/model"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// subscriptionBuffer bounds how many snapshots a slow client can lag behind
// before newer ones are dropped. Every delivered snapshot is complete, so a
// dropped one is superseded by the next.
const subscriptionBuffer = 16

// Subscription is one client's live view. Snapshots arrive on C, starting
// with the current state. Cancel releases the subscription; C is closed
// afterwards.
type Subscription struct {
	C <-chan json.RawMessage

	cancel func()
	once   sync.Once
}

// Cancel tears the subscription down. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

type subscriber struct {
	id      uint64
	ch      chan json.RawMessage
	matches func(event any) bool
	query   func() (json.RawMessage, error)
}

// Hub re-queries and re-emits result sets to subscribers whenever a matching
// change is committed.
type Hub struct {
	DB  *database.DBinstanceStruct
	Bus EventBus.Bus

	mu     sync.Mutex
	subs   map[uint64]*subscriber
	nextID uint64
	memo   *gocache.Cache
}

// NewHub creates a Hub and subscribes it to the bus.
func NewHub(db *database.DBinstanceStruct, bus EventBus.Bus) (*Hub, error) {
	h := &Hub{
		DB:   db,
		Bus:  bus,
		subs: make(map[uint64]*subscriber),
		memo: gocache.New(time.Hour, 2*time.Hour),
	}
	if err := bus.Subscribe(events.ApplicationSubmittedTopic, h.onApplicationSubmitted); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.ApplicationStatusChangedTopic, h.onApplicationStatusChanged); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.JobPostChangedTopic, h.onJobPostChanged); err != nil {
		return nil, err
	}
	return h, nil
}

// Close unsubscribes the hub from the bus and cancels every subscription.
func (h *Hub) Close() {
	_ = h.Bus.Unsubscribe(events.ApplicationSubmittedTopic, h.onApplicationSubmitted)
	_ = h.Bus.Unsubscribe(events.ApplicationStatusChangedTopic, h.onApplicationStatusChanged)
	_ = h.Bus.Unsubscribe(events.JobPostChangedTopic, h.onJobPostChanged)

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range subs {
		h.remove(sub.id)
	}
}

// SubscribeApplications streams an applicant's application list.
func (h *Hub) SubscribeApplications(applicantID uuid.UUID) *Subscription {
	return h.subscribe(
		func() (json.RawMessage, error) {
			var applications []model.Application
			err := h.DB.Preload("History").Preload("JobPost").
				Where("applicant_id = ?", applicantID).
				Order("id").Find(&applications).Error
			if err != nil {
				return nil, err
			}
			return json.Marshal(applications)
		},
		func(event any) bool {
			switch e := event.(type) {
			case events.ApplicationSubmitted:
				return e.ApplicantID == applicantID
			case events.ApplicationStatusChanged:
				return e.ApplicantID == applicantID
			case events.JobPostChanged:
				return false
			}
			return false
		},
	)
}

// SubscribePostApplications streams the application list of one job post.
func (h *Hub) SubscribePostApplications(postID uint) *Subscription {
	return h.subscribe(
		func() (json.RawMessage, error) {
			var applications []model.Application
			err := h.DB.Preload("History").Preload("Answers").Preload("Documents").
				Where("post_id = ?", postID).
				Order("id").Find(&applications).Error
			if err != nil {
				return nil, err
			}
			return json.Marshal(applications)
		},
		func(event any) bool {
			switch e := event.(type) {
			case events.ApplicationSubmitted:
				return e.PostID == postID
			case events.ApplicationStatusChanged:
				return e.PostID == postID
			case events.JobPostChanged:
				return e.PostID == postID
			}
			return false
		},
	)
}

// SubscribeCompanyPosts streams a company's job post list, including the
// capacity counters that move with admissions and slot releases.
func (h *Hub) SubscribeCompanyPosts(companyID uuid.UUID) *Subscription {
	return h.subscribe(
		func() (json.RawMessage, error) {
			var posts []model.JobPost
			err := h.DB.Where("company_id = ?", companyID).
				Order("id").Find(&posts).Error
			if err != nil {
				return nil, err
			}
			return json.Marshal(posts)
		},
		func(event any) bool {
			switch e := event.(type) {
			case events.ApplicationSubmitted:
				return e.CompanyID == companyID
			case events.ApplicationStatusChanged:
				return e.CompanyID == companyID
			case events.JobPostChanged:
				return e.CompanyID == companyID
			}
			return false
		},
	)
}

func (h *Hub) subscribe(query func() (json.RawMessage, error), matches func(any) bool) *Subscription {
	sub := &subscriber{
		ch:      make(chan json.RawMessage, subscriptionBuffer),
		matches: matches,
		query:   query,
	}

	h.mu.Lock()
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	h.mu.Unlock()
	metrics.ActiveSubscriptions.Inc()

	h.emit(sub)

	return &Subscription{
		C:      sub.ch,
		cancel: func() { h.remove(sub.id) },
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	h.memo.Delete(strconv.FormatUint(id, 10))
	close(sub.ch)
	metrics.ActiveSubscriptions.Dec()
}

func (h *Hub) onApplicationSubmitted(event events.ApplicationSubmitted) {
	h.broadcast(event)
}

func (h *Hub) onApplicationStatusChanged(event events.ApplicationStatusChanged) {
	h.broadcast(event)
}

func (h *Hub) onJobPostChanged(event events.JobPostChanged) {
	h.broadcast(event)
}

func (h *Hub) broadcast(event any) {
	h.mu.Lock()
	matched := make([]*subscriber, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.matches(event) {
			matched = append(matched, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range matched {
		h.emit(sub)
	}
}

// emit re-runs the subscriber's query and delivers the snapshot, unless it is
// byte-identical to the previous one.
func (h *Hub) emit(sub *subscriber) {
	snapshot, err := sub.query()
	if err != nil {
		log.WithError(err).WithField("subscription", sub.id).Warn("failed to refresh realtime snapshot")
		return
	}

	key := strconv.FormatUint(sub.id, 10)
	if previous, found := h.memo.Get(key); found && previous.(string) == string(snapshot) {
		return
	}
	h.memo.SetDefault(key, string(snapshot))

	h.mu.Lock()
	_, alive := h.subs[sub.id]
	if alive {
		select {
		case sub.ch <- snapshot:
		default:
			log.WithField("subscription", sub.id).Warn("dropping realtime snapshot for slow subscriber")
		}
	}
	h.mu.Unlock()
}
