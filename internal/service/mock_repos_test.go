package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"rifa-digital/backend/config"
	"rifa-digital/backend/internal/model"
	"rifa-digital/backend/internal/repository"
	pkgerrors "rifa-digital/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════════
// 内存版 Repository mock：语义与真实实现对齐
// （条件扣减守卫、批量落账全有或全无、清扫幂等）
// ═══════════════════════════════════════════════════════════════

// ── mockLinkRepo ──

type mockLinkRepo struct {
	mu    sync.Mutex
	links map[string]*model.Link

	// quotaConflictOnce 使下一次 ApplyClaim 直接返回守卫未命中，
	// 模拟校验与提交之间配额被并发消费
	quotaConflictOnce bool

	// afterConflict 在守卫未命中时对存储状态做并发修改
	// （持锁回调，直接操作 links）
	afterConflict func(links map[string]*model.Link)
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: make(map[string]*model.Link)}
}

func (m *mockLinkRepo) put(link *model.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *link
	m.links[link.Token] = &cp
}

func (m *mockLinkRepo) Create(ctx context.Context, link *model.Link) error {
	m.put(link)
	return nil
}

func (m *mockLinkRepo) GetByToken(ctx context.Context, token string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[token]
	if !ok {
		return nil, nil
	}
	cp := *link
	return &cp, nil
}

func (m *mockLinkRepo) BindBuyer(ctx context.Context, token, name, email, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link, ok := m.links[token]; ok {
		link.BuyerName, link.BuyerEmail, link.BuyerPhone = &name, &email, &phone
	}
	return nil
}

func (m *mockLinkRepo) ApplyClaim(ctx context.Context, token string, count int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quotaConflictOnce {
		m.quotaConflictOnce = false
		if m.afterConflict != nil {
			m.afterConflict(m.links)
		}
		return 0, false, pkgerrors.ErrQuotaConflict
	}
	link, ok := m.links[token]
	if !ok || !link.Active || link.Remaining < count || !time.Now().Before(link.ExpiresAt) {
		return 0, false, pkgerrors.ErrQuotaConflict
	}
	link.Remaining -= count
	link.Active = link.Remaining > 0
	return link.Remaining, !link.Active, nil
}

func (m *mockLinkRepo) SweepExpired(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tokens []string
	for _, link := range m.links {
		if link.Active && !now.Before(link.ExpiresAt) {
			link.Active = false
			tokens = append(tokens, link.Token)
		}
	}
	sort.Strings(tokens)
	return tokens, nil
}

func (m *mockLinkRepo) Deactivate(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link, ok := m.links[token]; ok {
		link.Active = false
	}
	return nil
}

func (m *mockLinkRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.links)), nil
}

func (m *mockLinkRepo) CountActive(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, link := range m.links {
		if link.Active && now.Before(link.ExpiresAt) {
			n++
		}
	}
	return n, nil
}

func (m *mockLinkRepo) SumOpportunities(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, link := range m.links {
		sum += int64(link.Opportunities)
	}
	return sum, nil
}

// ── mockPurchaseRepo ──

type mockPurchaseRepo struct {
	mu   sync.Mutex
	sold map[string]model.Purchase

	// batches 按调用记录每次落账的号码顺序
	batches [][]string

	// hideSoldOnce 使下一次 FilterSold 谎报为空，
	// 让冲突穿过预检、由落账的唯一约束路径拦截
	hideSoldOnce bool
}

func newMockPurchaseRepo() *mockPurchaseRepo {
	return &mockPurchaseRepo{sold: make(map[string]model.Purchase)}
}

func (m *mockPurchaseRepo) CreateBatch(ctx context.Context, purchases []model.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := make([]string, 0, len(purchases))
	for _, p := range purchases {
		order = append(order, p.Number)
	}
	m.batches = append(m.batches, order)
	// 全有或全无：先整批检查，再整批写入
	for _, p := range purchases {
		if _, taken := m.sold[p.Number]; taken {
			return pkgerrors.ErrDuplicateNumber
		}
	}
	for _, p := range purchases {
		p.CreatedAt = time.Now()
		m.sold[p.Number] = p
	}
	return nil
}

func (m *mockPurchaseRepo) FilterSold(ctx context.Context, numbers []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideSoldOnce {
		m.hideSoldOnce = false
		return nil, nil
	}
	var hit []string
	for _, n := range numbers {
		if _, taken := m.sold[n]; taken {
			hit = append(hit, n)
		}
	}
	sort.Strings(hit)
	return hit, nil
}

func (m *mockPurchaseRepo) ListSold(ctx context.Context) ([]model.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Purchase, 0, len(m.sold))
	for _, p := range m.sold {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *mockPurchaseRepo) CountSold(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sold)), nil
}

func (m *mockPurchaseRepo) CountByToken(ctx context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.sold {
		if p.Token == token {
			n++
		}
	}
	return n, nil
}

// ── 测试装配 ──

func newTestRepo() (*repository.Repository, *mockLinkRepo, *mockPurchaseRepo) {
	links := newMockLinkRepo()
	purchases := newMockPurchaseRepo()
	return &repository.Repository{Link: links, Purchase: purchases}, links, purchases
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, BaseURL: "http://localhost:8080"},
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret-at-least-16-chars",
			SessionTTL: time.Hour,
			AdminEmail: "admin@rifa.example.com",
		},
		Raffle: config.RaffleConfig{
			TotalNumbers:         1000,
			LinkTTL:              30 * time.Minute,
			AllowedOpportunities: []int{2, 4, 6, 8, 10},
			RaffleDate:           "2025-11-01",
			MinimumPercent:       75,
			ProgressCacheTTL:     10 * time.Second,
		},
	}
}

func strPtr(s string) *string { return &s }

func boundLink(token string, opportunities int, expiresAt time.Time) *model.Link {
	return &model.Link{
		Token:         token,
		Opportunities: opportunities,
		Remaining:     opportunities,
		Active:        true,
		ExpiresAt:     expiresAt,
		BuyerName:     strPtr("Ana García"),
		BuyerEmail:    strPtr("ana@example.com"),
		BuyerPhone:    strPtr("3001234567"),
	}
}
