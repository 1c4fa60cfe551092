package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"newshub/internal/domain/entity"
)

/* ─────────────────────────── フェイク ─────────────────────────── */

type fakeNotificationRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    []*entity.Notification
	failFor map[int64]error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failFor: make(map[int64]error)}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[n.UserID]; ok {
		return err
	}
	f.nextID++
	n.ID = f.nextID
	stored := *n
	f.rows = append(f.rows, &stored)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Notification
	for _, n := range f.rows {
		if n.UserID == userID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return entity.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// recordingPublisher captures pushes; optionally fails every publish.
type recordingPublisher struct {
	mu     sync.Mutex
	pushes map[int64][][]byte
	err    error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{pushes: make(map[int64][][]byte)}
}

func (p *recordingPublisher) PublishToUser(_ context.Context, userID int64, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushes[userID] = append(p.pushes[userID], payload)
	return nil
}

func (p *recordingPublisher) pushCount(userID int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes[userID])
}

/* ─────────────────────────── 1. Notify ─────────────────────────── */

func TestNotify_PersistsThenPushes(t *testing.T) {
	repo := newFakeNotificationRepo()
	pub := newRecordingPublisher()
	svc := NewService(repo, pub)

	n, err := svc.Notify(context.Background(), 7, "New article", "Go 1.25", entity.NotificationSystem, nil)
	if err != nil {
		t.Fatalf("Notify err=%v", err)
	}
	if n.ID == 0 {
		t.Fatal("notification ID not assigned")
	}
	if pub.pushCount(7) != 1 {
		t.Fatalf("pushes=%d, want 1", pub.pushCount(7))
	}

	var payload pushPayload
	if err := json.Unmarshal(pub.pushes[7][0], &payload); err != nil {
		t.Fatalf("payload unmarshal err=%v", err)
	}
	if payload.ID != n.ID || payload.Title != "New article" {
		t.Fatalf("payload=%+v", payload)
	}
}

func TestNotify_PublishFailureDoesNotFail(t *testing.T) {
	repo := newFakeNotificationRepo()
	pub := newRecordingPublisher()
	pub.err = errors.New("redis down")
	svc := NewService(repo, pub)

	// 行は永続化される。pushの失敗は握りつぶす
	n, err := svc.Notify(context.Background(), 7, "t", "c", entity.NotificationSystem, nil)
	if err != nil {
		t.Fatalf("Notify err=%v", err)
	}
	if n.ID == 0 {
		t.Fatal("notification not persisted")
	}
}

func TestNotify_RejectsUnknownType(t *testing.T) {
	svc := NewService(newFakeNotificationRepo(), nil)

	_, err := svc.Notify(context.Background(), 7, "t", "c", "BOGUS", nil)
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("err=%v, want ErrInvalidType", err)
	}
}

/* ─────────────────────────── 2. NotifyAll ─────────────────────────── */

func TestNotifyAll_OneRowAndPushPerUser(t *testing.T) {
	repo := newFakeNotificationRepo()
	pub := newRecordingPublisher()
	svc := NewService(repo, pub)

	userIDs := []int64{1, 2, 3, 4, 5}
	failed, err := svc.NotifyAll(context.Background(), userIDs, "t", "c", entity.NotificationSystem, nil)
	if err != nil {
		t.Fatalf("NotifyAll err=%v", err)
	}
	if failed != 0 {
		t.Fatalf("failed=%d, want 0", failed)
	}
	if repo.count() != len(userIDs) {
		t.Fatalf("rows=%d, want %d", repo.count(), len(userIDs))
	}
	for _, id := range userIDs {
		if pub.pushCount(id) != 1 {
			t.Fatalf("user %d pushes=%d, want 1", id, pub.pushCount(id))
		}
	}
}

func TestNotifyAll_CountsPerUserFailures(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.failFor[3] = errors.New("constraint violation")
	svc := NewService(repo, newRecordingPublisher())

	failed, err := svc.NotifyAll(context.Background(), []int64{1, 2, 3}, "t", "c", entity.NotificationSystem, nil)
	if err != nil {
		t.Fatalf("NotifyAll err=%v", err)
	}
	if failed != 1 {
		t.Fatalf("failed=%d, want 1", failed)
	}
	if repo.count() != 2 {
		t.Fatalf("rows=%d, want 2", repo.count())
	}
}

/* ─────────────────────────── 3. 読み出し系 ─────────────────────────── */

func TestUnreadLifecycle(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	first, _ := svc.Notify(ctx, 7, "a", "c", entity.NotificationSystem, nil)
	_, _ = svc.Notify(ctx, 7, "b", "c", entity.NotificationComment, nil)

	count, err := svc.CountUnread(ctx, 7)
	if err != nil || count != 2 {
		t.Fatalf("CountUnread err=%v count=%d", err, count)
	}

	if err := svc.MarkRead(ctx, first.ID, 7); err != nil {
		t.Fatalf("MarkRead err=%v", err)
	}
	count, _ = svc.CountUnread(ctx, 7)
	if count != 1 {
		t.Fatalf("count=%d after MarkRead, want 1", count)
	}

	if err := svc.MarkAllRead(ctx, 7); err != nil {
		t.Fatalf("MarkAllRead err=%v", err)
	}
	count, _ = svc.CountUnread(ctx, 7)
	if count != 0 {
		t.Fatalf("count=%d after MarkAllRead, want 0", count)
	}
}
