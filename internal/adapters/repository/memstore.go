// Package repository defines the user store interface and errors.
package repository

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/okian/podium/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: rating DESC, then username ASC (deterministic).
// We implement a BST comparator where "less" means ranks earlier
// (i.e., higher rating ranks earlier). In-order traversal therefore
// produces the leaderboard from best to worst, and subtree sizes give
// order-statistic skip/limit scans and higher-rating counts in O(log n).

// node is a treap node carrying one user record.
type node struct {
	id       string
	username string
	rating   int
	prio     uint64
	left     *node
	right    *node
	size     int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aRating, aName) should appear before (bRating, bName)
// in the leaderboard (higher ratings first, then username ascending).
func less(aRating int, aName string, bRating int, bName string) bool {
	if aRating != bRating {
		return aRating > bRating // higher rating ranks earlier
	}
	return aName < bName // tie-breaker by username asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n, nu *node) *node {
	if n == nil {
		nu.size = 1
		return nu
	}
	if less(nu.rating, nu.username, n.rating, n.username) {
		n.left = insert(n.left, nu)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, nu)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, username string, rating int) *node {
	if n == nil {
		return nil
	}
	if rating == n.rating && username == n.username {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, username, rating)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, username, rating)
		}
	} else if less(rating, username, n.rating, n.username) {
		n.left = deleteNode(n.left, username, rating)
	} else {
		n.right = deleteNode(n.right, username, rating)
	}
	fix(n)
	return n
}

// appendRange walks the subtree in rank order, skipping skip records and
// appending at most take records to out.
func appendRange(n *node, skip, take int, out *[]UserRecord) {
	if n == nil || len(*out) >= take {
		return
	}
	ls := nsize(n.left)
	if skip > ls {
		appendRange(n.right, skip-ls-1, take, out)
		return
	}
	appendRange(n.left, skip, take, out)
	if len(*out) >= take {
		return
	}
	*out = append(*out, UserRecord{ID: n.id, Username: n.username, Rating: n.rating})
	appendRange(n.right, 0, take, out)
}

// countBefore returns the number of nodes that rank strictly earlier than a
// virtual record at (rating, username).
func countBefore(n *node, rating int, username string) int {
	count := 0
	for n != nil {
		if less(n.rating, n.username, rating, username) {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// MemoryStore is the default in-process Store backend, also used as the
// reference model in tests.
type MemoryStore struct {
	mu         sync.RWMutex
	root       *node
	byUsername map[string]*node
	usernames  []string // sorted, backs prefix scans
	rnd        *rand.Rand

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewMemoryStore constructs a memory store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byUsername:            make(map[string]*node),
		rnd:                   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap priorities, not crypto
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics goroutine.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
		// already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Upsert inserts or replaces the record stored under rec.Username.
func (s *MemoryStore) Upsert(ctx context.Context, rec UserRecord) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery(metrics.QueryKindUpsert, float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUsername[rec.Username]; ok {
		s.root = deleteNode(s.root, old.username, old.rating)
	} else {
		i := sort.SearchStrings(s.usernames, rec.Username)
		s.usernames = append(s.usernames, "")
		copy(s.usernames[i+1:], s.usernames[i:])
		s.usernames[i] = rec.Username
	}

	nu := &node{id: rec.ID, username: rec.Username, rating: rec.Rating, prio: s.rnd.Uint64()}
	s.root = insert(s.root, nu)
	s.byUsername[rec.Username] = nu
	return nil
}

// ListByRating returns up to limit records ordered by rating descending,
// username ascending, skipping offset records.
func (s *MemoryStore) ListByRating(ctx context.Context, limit, offset int) ([]UserRecord, error) {
	if limit < 1 {
		metrics.RecordStoreError(metrics.QueryKindScan)
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery(metrics.QueryKindScan, float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]UserRecord, 0, limit)
	appendRange(s.root, offset, limit, &out)
	return out, nil
}

// CountHigher returns the number of records with rating strictly greater
// than the given value in O(log n).
func (s *MemoryStore) CountHigher(ctx context.Context, rating int) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery(metrics.QueryKindCount, float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Every record ranking earlier than a virtual record at (rating, "")
	// has a strictly higher rating: equal ratings tie-break on username,
	// and no username sorts before the empty string.
	return countBefore(s.root, rating, ""), nil
}

// SearchByPrefix returns up to limit records whose username starts with
// prefix, in username order.
func (s *MemoryStore) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]UserRecord, error) {
	if limit < 1 {
		metrics.RecordStoreError(metrics.QueryKindPrefix)
		return nil, ErrInvalidLimit
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery(metrics.QueryKindPrefix, float64(time.Since(start).Milliseconds()))
	}()

	upper := PrefixUpperBound(prefix)
	if upper == "" {
		// Unsatisfiable range (empty prefix is rejected upstream; a
		// max-rune suffix cannot be incremented).
		return []UserRecord{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lo := sort.SearchStrings(s.usernames, prefix)
	hi := sort.SearchStrings(s.usernames, upper)
	if hi-lo > limit {
		hi = lo + limit
	}

	out := make([]UserRecord, 0, hi-lo)
	for _, name := range s.usernames[lo:hi] {
		n := s.byUsername[name]
		out = append(out, UserRecord{ID: n.id, Username: n.username, Rating: n.rating})
	}
	return out, nil
}

// Count returns the total number of records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUsername), nil
}

// startMetricsUpdater starts a background goroutine that refreshes the
// total-users gauge.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				total := len(s.byUsername)
				s.mu.RUnlock()
				metrics.UpdateTotalUsers(total)
			}
		}
	}()
}
