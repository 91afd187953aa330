package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"rifa-digital/backend/internal/dto"
	"rifa-digital/backend/internal/model"
	pkgerrors "rifa-digital/backend/pkg/errors"
)

func newClaimService(t *testing.T) (ClaimService, *mockLinkRepo, *mockPurchaseRepo) {
	t.Helper()
	repo, links, purchases := newTestRepo()
	svc := NewClaimService(testConfig(), repo, nil, nil, zap.NewNop())
	return svc, links, purchases
}

func TestClaim_Success(t *testing.T) {
	svc, links, purchases := newClaimService(t)
	links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))

	resp, err := svc.Claim(context.Background(), "tok1", []string{"007", "123"})
	if err != nil {
		t.Fatalf("认领失败: %v", err)
	}
	if resp.Remaining != 2 {
		t.Errorf("期望 remaining=2，实际 %d", resp.Remaining)
	}
	if resp.Deactivated {
		t.Error("配额未耗尽不应停用链接")
	}
	if !reflect.DeepEqual(resp.Numbers, []string{"007", "123"}) {
		t.Errorf("返回号码不符: %v", resp.Numbers)
	}

	// 落账记录携带买家信息快照
	sold, _ := purchases.ListSold(context.Background())
	if len(sold) != 2 {
		t.Fatalf("期望落账 2 条，实际 %d", len(sold))
	}
	if sold[0].BuyerName != "Ana García" || sold[0].Token != "tok1" {
		t.Errorf("落账记录买家信息不符: %+v", sold[0])
	}
}

func TestClaim_ExhaustDeactivates(t *testing.T) {
	svc, links, _ := newClaimService(t)
	links.put(boundLink("tok1", 2, time.Now().Add(time.Hour)))

	resp, err := svc.Claim(context.Background(), "tok1", []string{"000", "999"})
	if err != nil {
		t.Fatalf("认领失败: %v", err)
	}
	if resp.Remaining != 0 || !resp.Deactivated {
		t.Errorf("配额耗尽应停用链接: remaining=%d deactivated=%v", resp.Remaining, resp.Deactivated)
	}

	// 停用后再次认领被拒
	if _, err := svc.Claim(context.Background(), "tok1", []string{"111"}); !errors.Is(err, ErrLinkInactive) {
		t.Errorf("期望 ErrLinkInactive，实际: %v", err)
	}
}

func TestClaim_InvalidInput(t *testing.T) {
	svc, links, _ := newClaimService(t)
	links.put(boundLink("tok1", 10, time.Now().Add(time.Hour)))

	cases := [][]string{
		nil,                     // 空请求
		{},                      // 空列表
		{"12"},                  // 位数不足
		{"1234"},                // 位数超出
		{"1a3"},                 // 非数字
		{"-12"},                 // 负号
		{"007", "007"},          // 请求内重复
		{"001", "002", "001"},   // 重复混在中间
	}
	for _, numbers := range cases {
		if _, err := svc.Claim(context.Background(), "tok1", numbers); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("numbers=%v 期望 ErrInvalidInput，实际: %v", numbers, err)
		}
	}
}

func TestClaim_LinkStates(t *testing.T) {
	svc, links, _ := newClaimService(t)
	ctx := context.Background()

	// 不存在
	if _, err := svc.Claim(ctx, "missing", []string{"001"}); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("期望 ErrLinkNotFound，实际: %v", err)
	}

	// 已停用
	inactive := boundLink("tok-off", 4, time.Now().Add(time.Hour))
	inactive.Active = false
	links.put(inactive)
	if _, err := svc.Claim(ctx, "tok-off", []string{"001"}); !errors.Is(err, ErrLinkInactive) {
		t.Errorf("期望 ErrLinkInactive，实际: %v", err)
	}

	// 已过期：返回过期错误并顺手停用
	links.put(boundLink("tok-old", 4, time.Now().Add(-time.Minute)))
	if _, err := svc.Claim(ctx, "tok-old", []string{"001"}); !errors.Is(err, ErrLinkExpired) {
		t.Errorf("期望 ErrLinkExpired，实际: %v", err)
	}
	stale, _ := links.GetByToken(ctx, "tok-old")
	if stale.Active {
		t.Error("过期链接应被懒惰停用")
	}
}

func TestClaim_NotEnoughRemaining(t *testing.T) {
	svc, links, _ := newClaimService(t)
	links.put(boundLink("tok1", 2, time.Now().Add(time.Hour)))

	_, err := svc.Claim(context.Background(), "tok1", []string{"001", "002", "003"})
	if !errors.Is(err, ErrNotEnoughRemaining) {
		t.Fatalf("期望 ErrNotEnoughRemaining，实际: %v", err)
	}

	// 被拒请求不得消耗配额
	link, _ := links.GetByToken(context.Background(), "tok1")
	if link.Remaining != 2 {
		t.Errorf("被拒后 remaining 应保持 2，实际 %d", link.Remaining)
	}
}

func TestClaim_BuyerDataMissing(t *testing.T) {
	svc, links, _ := newClaimService(t)
	bare := boundLink("tok1", 4, time.Now().Add(time.Hour))
	bare.BuyerName, bare.BuyerEmail, bare.BuyerPhone = nil, nil, nil
	links.put(bare)

	if _, err := svc.Claim(context.Background(), "tok1", []string{"001"}); !errors.Is(err, ErrBuyerDataMissing) {
		t.Errorf("期望 ErrBuyerDataMissing，实际: %v", err)
	}
}

func TestClaim_NumbersAlreadySold(t *testing.T) {
	svc, links, purchases := newClaimService(t)
	ctx := context.Background()
	links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))
	links.put(boundLink("tok2", 4, time.Now().Add(time.Hour)))

	if _, err := svc.Claim(ctx, "tok1", []string{"100", "200"}); err != nil {
		t.Fatalf("预置认领失败: %v", err)
	}

	// 与已售号码部分重叠：整单失败并返回冲突子集
	_, err := svc.Claim(ctx, "tok2", []string{"200", "300"})
	soldErr, ok := pkgerrors.AsNumbersSold(err)
	if !ok {
		t.Fatalf("期望 NumbersSoldError，实际: %v", err)
	}
	if !reflect.DeepEqual(soldErr.Numbers, []string{"200"}) {
		t.Errorf("冲突子集不符: %v", soldErr.Numbers)
	}

	// 冲突请求不得部分落账、不得消耗配额
	if count, _ := purchases.CountByToken(ctx, "tok2"); count != 0 {
		t.Errorf("冲突请求不应落账，实际 %d 条", count)
	}
	link, _ := links.GetByToken(ctx, "tok2")
	if link.Remaining != 4 {
		t.Errorf("冲突请求后 remaining 应保持 4，实际 %d", link.Remaining)
	}
}

func TestClaim_RaceLostOnUniqueIndex(t *testing.T) {
	svc, links, purchases := newClaimService(t)
	ctx := context.Background()
	links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))
	links.put(boundLink("tok2", 4, time.Now().Add(time.Hour)))

	if _, err := svc.Claim(ctx, "tok1", []string{"500"}); err != nil {
		t.Fatalf("预置认领失败: %v", err)
	}

	// 预检谎报为空，冲突必须被唯一约束路径兜住
	purchases.hideSoldOnce = true
	_, err := svc.Claim(ctx, "tok2", []string{"500", "501"})
	soldErr, ok := pkgerrors.AsNumbersSold(err)
	if !ok {
		t.Fatalf("期望 NumbersSoldError，实际: %v", err)
	}
	if !reflect.DeepEqual(soldErr.Numbers, []string{"500"}) {
		t.Errorf("冲突子集不符: %v", soldErr.Numbers)
	}
	if _, taken := purchases.sold["501"]; taken {
		t.Error("批量落账必须全有或全无，501 不应写入")
	}
}

func TestClaim_QuotaRace(t *testing.T) {
	svc, links, _ := newClaimService(t)
	links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))

	// 校验通过后扣减守卫未命中，映射为剩余不足
	links.quotaConflictOnce = true
	if _, err := svc.Claim(context.Background(), "tok1", []string{"001"}); !errors.Is(err, ErrNotEnoughRemaining) {
		t.Errorf("期望 ErrNotEnoughRemaining，实际: %v", err)
	}
}

func TestClaim_QuotaRaceMapsLinkState(t *testing.T) {
	// 守卫未命中后重读链接，区分"并发停用"与"提交时刻已过期"
	t.Run("并发停用", func(t *testing.T) {
		svc, links, _ := newClaimService(t)
		links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))
		links.quotaConflictOnce = true
		links.afterConflict = func(m map[string]*model.Link) {
			m["tok1"].Active = false
		}

		if _, err := svc.Claim(context.Background(), "tok1", []string{"001"}); !errors.Is(err, ErrLinkInactive) {
			t.Errorf("期望 ErrLinkInactive，实际: %v", err)
		}
	})

	t.Run("提交时刻已过期", func(t *testing.T) {
		svc, links, _ := newClaimService(t)
		links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))
		links.quotaConflictOnce = true
		links.afterConflict = func(m map[string]*model.Link) {
			m["tok1"].ExpiresAt = time.Now().Add(-time.Second)
		}

		if _, err := svc.Claim(context.Background(), "tok1", []string{"001"}); !errors.Is(err, ErrLinkExpired) {
			t.Errorf("期望 ErrLinkExpired，实际: %v", err)
		}
	})
}

func TestClaim_InsertsInGlobalOrder(t *testing.T) {
	svc, links, purchases := newClaimService(t)
	links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))

	// 落账按升序进行（并发事务的锁获取遵循全局顺序），响应保持请求顺序
	resp, err := svc.Claim(context.Background(), "tok1", []string{"006", "005", "100"})
	if err != nil {
		t.Fatalf("认领失败: %v", err)
	}
	if !reflect.DeepEqual(resp.Numbers, []string{"006", "005", "100"}) {
		t.Errorf("响应应保持请求顺序，实际: %v", resp.Numbers)
	}
	if len(purchases.batches) != 1 || !reflect.DeepEqual(purchases.batches[0], []string{"005", "006", "100"}) {
		t.Errorf("落账应按升序插入，实际: %v", purchases.batches)
	}
}

func TestClaim_ConcurrentOverlap(t *testing.T) {
	svc, links, purchases := newClaimService(t)
	links.put(boundLink("tok-a", 2, time.Now().Add(time.Hour)))
	links.put(boundLink("tok-b", 2, time.Now().Add(time.Hour)))

	// 两个链接并发抢同一个号码，恰好一个成功
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tok := range []string{"tok-a", "tok-b"} {
		wg.Add(1)
		go func(idx int, token string) {
			defer wg.Done()
			_, errs[idx] = svc.Claim(context.Background(), token, []string{"010"})
		}(i, tok)
	}
	wg.Wait()

	success, conflict := 0, 0
	for _, err := range errs {
		if err == nil {
			success++
		} else if _, ok := pkgerrors.AsNumbersSold(err); ok {
			conflict++
		} else {
			t.Fatalf("意外错误: %v", err)
		}
	}
	if success != 1 || conflict != 1 {
		t.Errorf("期望恰好一个成功一个冲突，实际 success=%d conflict=%d", success, conflict)
	}
	if count, _ := purchases.CountSold(context.Background()); count != 1 {
		t.Errorf("010 只能售出一次，实际落账 %d 条", count)
	}
}

func TestClaim_FullLifecycle(t *testing.T) {
	repo, links, purchases := newTestRepo()
	cfg := testConfig()
	linkSvc := NewLinkService(cfg, repo, zap.NewNop())
	claimSvc := NewClaimService(cfg, repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	// 创建 → 登记买家 → 认领全部配额
	created, err := linkSvc.CreateLink(ctx, 2)
	if err != nil {
		t.Fatalf("创建链接失败: %v", err)
	}
	if _, err := linkSvc.BindBuyer(ctx, created.Token, &dto.BindBuyerRequest{
		Name: "Ana García", Email: "ana@example.com", Phone: "3001234567",
	}); err != nil {
		t.Fatalf("登记买家失败: %v", err)
	}

	resp, err := claimSvc.Claim(ctx, created.Token, []string{"001", "002"})
	if err != nil {
		t.Fatalf("认领失败: %v", err)
	}
	if resp.Remaining != 0 || !resp.Deactivated {
		t.Errorf("期望配额耗尽并停用，实际: %+v", resp)
	}

	// 台账携带登记的买家身份
	sold, _ := purchases.ListSold(ctx)
	if len(sold) != 2 || sold[0].BuyerName != "Ana García" || sold[1].BuyerEmail != "ana@example.com" {
		t.Errorf("台账记录不符: %+v", sold)
	}

	// 停用为终态
	link, _ := links.GetByToken(ctx, created.Token)
	if link.Active {
		t.Error("配额耗尽的链接应保持停用")
	}
}

func TestClaimSingle(t *testing.T) {
	svc, links, purchases := newClaimService(t)
	ctx := context.Background()
	links.put(boundLink("tok1", 4, time.Now().Add(time.Hour)))

	resp, err := svc.ClaimSingle(ctx, "tok1", 7)
	if err != nil {
		t.Fatalf("单号认领失败: %v", err)
	}
	if !reflect.DeepEqual(resp.Numbers, []string{"007"}) {
		t.Errorf("期望补零为 007，实际: %v", resp.Numbers)
	}
	if _, taken := purchases.sold["007"]; !taken {
		t.Error("007 应已落账")
	}

	// 越界
	for _, n := range []int{-1, 1000, 99999} {
		if _, err := svc.ClaimSingle(ctx, "tok1", n); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("number=%d 期望 ErrInvalidInput，实际: %v", n, err)
		}
	}
}
