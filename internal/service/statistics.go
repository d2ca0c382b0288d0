package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	maxStatsDays        = 366
	defaultSummaryDays  = 30
	defaultMerchantDays = 7
	financeMonths       = 6
)

// StatsScope narrows aggregation to one merchant. The zero value is platform-wide.
type StatsScope struct {
	MerchantID *int64
}

func PlatformScope() StatsScope {
	return StatsScope{}
}

func MerchantScope(merchantID int64) StatsScope {
	return StatsScope{MerchantID: &merchantID}
}

func (sc StatsScope) filter() domain.OrderFilter {
	return domain.OrderFilter{MerchantID: sc.MerchantID}
}

func (sc StatsScope) key() string {
	if sc.MerchantID == nil {
		return "all"
	}
	return "m" + strconv.FormatInt(*sc.MerchantID, 10)
}

// ListQuery is shared by the admin and merchant listings.
type ListQuery struct {
	Scope  StatsScope
	Status domain.OrderStatus
	// From and To are calendar days, both inclusive.
	From *time.Time
	To   *time.Time
	Page domain.PageRequest
}

type StatisticsDeps struct {
	Orders port.OrderRepository
	// Cache is optional; aggregates are recomputed on every call without it.
	Cache       port.StatsCache
	CacheTTL    time.Duration
	Clock       func() time.Time
	Location    *time.Location
	MaxPageSize int
	Logger      *zap.Logger
}

// StatisticsEngine aggregates by scanning order rows; there are no running counters.
// Store failures never reach the caller: results degrade to zero-filled values.
type StatisticsEngine struct {
	orders      port.OrderRepository
	cache       port.StatsCache
	cacheTTL    time.Duration
	clock       func() time.Time
	loc         *time.Location
	maxPageSize int
	logger      *zap.Logger
}

func NewStatisticsEngine(deps StatisticsDeps) (*StatisticsEngine, error) {
	if deps.Orders == nil {
		return nil, errors.New("statistics: order repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatisticsEngine{
		orders:      deps.Orders,
		cache:       deps.Cache,
		cacheTTL:    lo.Ternary(deps.CacheTTL > 0, deps.CacheTTL, time.Minute),
		clock:       clock,
		loc:         loc,
		maxPageSize: lo.Ternary(deps.MaxPageSize > 0, deps.MaxPageSize, domain.MaxPageSize),
		logger:      logger,
	}, nil
}

// ParseDate reads YYYY-MM-DD as midnight in the engine's time zone.
func (e *StatisticsEngine) ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, e.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrOrderInvalidInput, s)
	}
	return t, nil
}

// StatusBreakdown always returns every status in lifecycle order.
func (e *StatisticsEngine) StatusBreakdown(ctx context.Context, scope StatsScope) []domain.StatusCount {
	result, err := cached(ctx, e, "breakdown:"+scope.key(), func(ctx context.Context) ([]domain.StatusCount, error) {
		facts, err := e.orders.ScanOrderFacts(ctx, scope.filter())
		if err != nil {
			return nil, fmt.Errorf("orders.ScanOrderFacts: %w", err)
		}
		return statusBreakdown(facts), nil
	})
	if err != nil {
		e.degraded("status breakdown", scope, err)
		return statusBreakdown(nil)
	}
	return result
}

// SalesTrend covers the last days calendar days, today included.
func (e *StatisticsEngine) SalesTrend(ctx context.Context, scope StatsScope, days int) ([]domain.DailySales, error) {
	if days < 1 || days > maxStatsDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrOrderInvalidInput, maxStatsDays)
	}

	today := e.today()
	return e.DailySalesBetween(ctx, scope, today.AddDate(0, 0, -(days-1)), today)
}

// DailySalesBetween returns one row per calendar day in [from, to], empty days included.
func (e *StatisticsEngine) DailySalesBetween(ctx context.Context, scope StatsScope, from, to time.Time) ([]domain.DailySales, error) {
	from, to = e.startOfDay(from), e.startOfDay(to)
	if err := e.validateDays(from, to); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("daily:%s:%s:%s", scope.key(), from.Format(dateLayout), to.Format(dateLayout))

	result, err := cached(ctx, e, key, func(ctx context.Context) ([]domain.DailySales, error) {
		facts, err := e.revenueFacts(ctx, scope, from, to)
		if err != nil {
			return nil, err
		}
		return e.dailySeries(facts, from, to), nil
	})
	if err != nil {
		e.degraded("daily sales", scope, err)
		return e.dailySeries(nil, from, to), nil
	}
	return result, nil
}

// UserStats counts all orders of the user; paid orders and spending include
// revenue-counting statuses only.
func (e *StatisticsEngine) UserStats(ctx context.Context, userID string) (domain.UserOrderStats, error) {
	if userID == "" {
		return domain.UserOrderStats{}, fmt.Errorf("%w: %w", ErrOrderInvalidInput, domain.ErrEmptyUserID)
	}

	stats := domain.UserOrderStats{UserID: userID, TotalSpent: decimal.Zero}

	facts, err := e.orders.ScanOrderFacts(ctx, domain.OrderFilter{UserIDs: []string{userID}})
	if err != nil {
		e.logger.Error("statistics degraded", zap.String("aggregate", "user stats"), zap.String("user_id", userID), zap.Error(err))
		return stats, nil
	}

	stats.TotalOrders = int64(len(facts))
	stats.TotalSpent, stats.PaidOrders = sumRevenue(facts)

	return stats, nil
}

func (e *StatisticsEngine) TotalOrderCount(ctx context.Context, scope StatsScope) int64 {
	count, err := e.orders.CountOrders(ctx, scope.filter())
	if err != nil {
		e.degraded("total order count", scope, err)
		return 0
	}
	return count
}

// PendingOrderCount counts distinct orders still waiting on the canteen: PENDING or PAID.
func (e *StatisticsEngine) PendingOrderCount(ctx context.Context, scope StatsScope) int64 {
	filter := scope.filter()
	filter.Statuses = []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusPaid}

	count, err := e.orders.CountOrders(ctx, filter)
	if err != nil {
		e.degraded("pending order count", scope, err)
		return 0
	}
	return count
}

// TodaySales sums order totals created today with a revenue-counting status.
func (e *StatisticsEngine) TodaySales(ctx context.Context, scope StatsScope) decimal.Decimal {
	today := e.today()

	facts, err := e.revenueFacts(ctx, scope, today, today)
	if err != nil {
		e.degraded("today sales", scope, err)
		return decimal.Zero
	}

	revenue, _ := sumRevenue(facts)
	return revenue
}

func (e *StatisticsEngine) TotalSales(ctx context.Context, scope StatsScope) decimal.Decimal {
	filter := scope.filter()
	filter.Statuses = domain.RevenueStatuses()

	facts, err := e.orders.ScanOrderFacts(ctx, filter)
	if err != nil {
		e.degraded("total sales", scope, err)
		return decimal.Zero
	}

	revenue, _ := sumRevenue(facts)
	return revenue
}

// Overview loads the per-status counts and today's order count concurrently.
func (e *StatisticsEngine) Overview(ctx context.Context) domain.AdminOverview {
	scope := PlatformScope()
	today := e.today()

	result, err := cached(ctx, e, "overview:"+today.Format(dateLayout), func(ctx context.Context) (domain.AdminOverview, error) {
		var (
			overview domain.AdminOverview
			facts    []domain.OrderFact
		)

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			var err error
			facts, err = e.orders.ScanOrderFacts(gctx, scope.filter())
			if err != nil {
				return fmt.Errorf("orders.ScanOrderFacts: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			var err error
			overview.TodayOrders, err = e.orders.CountOrders(gctx, domain.OrderFilter{CreatedAt: e.dayRange(today, today)})
			if err != nil {
				return fmt.Errorf("orders.CountOrders: %w", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return overview, err
		}

		overview.TotalOrders = int64(len(facts))
		overview.ByStatus = statusBreakdown(facts)

		return overview, nil
	})
	if err != nil {
		e.degraded("overview", scope, err)
		return domain.AdminOverview{ByStatus: statusBreakdown(nil)}
	}
	return result
}

// SalesSummary defaults to the last 30 days when a bound is missing.
func (e *StatisticsEngine) SalesSummary(ctx context.Context, scope StatsScope, from, to *time.Time) (domain.SalesSummary, error) {
	start, end := e.window(from, to, defaultSummaryDays)

	daily, err := e.DailySalesBetween(ctx, scope, start, end)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	summary := domain.SalesSummary{
		StartDate:   start.Format(dateLayout),
		EndDate:     end.Format(dateLayout),
		TotalAmount: decimal.Zero,
		Daily:       daily,
	}
	for _, day := range daily {
		summary.TotalOrderCount += day.OrderCount
		summary.TotalAmount = summary.TotalAmount.Add(day.Revenue)
	}

	return summary, nil
}

// MerchantOrderStats defaults to the last 7 days. Pending here means PAID,
// waiting for the merchant to accept.
func (e *StatisticsEngine) MerchantOrderStats(ctx context.Context, merchantID int64, from, to *time.Time) (domain.MerchantOrderStats, error) {
	start, end := e.window(from, to, defaultMerchantDays)
	if err := e.validateDays(start, end); err != nil {
		return domain.MerchantOrderStats{}, err
	}

	scope := MerchantScope(merchantID)
	key := fmt.Sprintf("merchant-orders:%s:%s:%s", scope.key(), start.Format(dateLayout), end.Format(dateLayout))

	result, err := cached(ctx, e, key, func(ctx context.Context) (domain.MerchantOrderStats, error) {
		filter := scope.filter()
		filter.CreatedAt = e.dayRange(start, end)

		facts, err := e.orders.ScanOrderFacts(ctx, filter)
		if err != nil {
			return domain.MerchantOrderStats{}, fmt.Errorf("orders.ScanOrderFacts: %w", err)
		}

		stats := domain.MerchantOrderStats{
			TotalOrders: int64(len(facts)),
			Daily:       e.dailySeries(facts, start, end),
		}
		for _, fact := range facts {
			switch fact.Status {
			case domain.OrderStatusPaid:
				stats.PendingOrders++
			case domain.OrderStatusCompleted:
				stats.CompletedOrders++
			case domain.OrderStatusCancelled:
				stats.CancelledOrders++
			}
		}

		return stats, nil
	})
	if err != nil {
		e.degraded("merchant order stats", scope, err)
		return domain.MerchantOrderStats{Daily: e.dailySeries(nil, start, end)}, nil
	}
	return result, nil
}

// MerchantFinance totals revenue over [from, to] (all time when both are nil)
// and always reports the last six calendar months, current month included.
func (e *StatisticsEngine) MerchantFinance(ctx context.Context, merchantID int64, from, to *time.Time) (domain.MerchantFinanceStats, error) {
	var rng *domain.TimeRange
	if from != nil || to != nil {
		start, end := e.window(from, to, maxStatsDays)
		if end.Before(start) {
			return domain.MerchantFinanceStats{}, fmt.Errorf("%w: start date %s is after end date %s", ErrOrderInvalidInput, start.Format(dateLayout), end.Format(dateLayout))
		}
		rng = e.dayRange(start, end)
	}

	scope := MerchantScope(merchantID)
	today := e.today()
	firstMonth := time.Date(today.Year(), today.Month()-(financeMonths-1), 1, 0, 0, 0, 0, e.loc)

	rangeKey := "all"
	if rng != nil {
		rangeKey = rng.After.Format(dateLayout) + ":" + rng.Before.Format(dateLayout)
	}
	key := fmt.Sprintf("merchant-finance:%s:%s:%s", scope.key(), rangeKey, today.Format(dateLayout))

	result, err := cached(ctx, e, key, func(ctx context.Context) (domain.MerchantFinanceStats, error) {
		var rangeFacts, monthFacts []domain.OrderFact

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			filter := scope.filter()
			filter.Statuses = domain.RevenueStatuses()
			filter.CreatedAt = rng

			var err error
			rangeFacts, err = e.orders.ScanOrderFacts(gctx, filter)
			if err != nil {
				return fmt.Errorf("orders.ScanOrderFacts[range]: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			var err error
			monthFacts, err = e.revenueFacts(gctx, scope, firstMonth, today)
			if err != nil {
				return fmt.Errorf("months: %w", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return domain.MerchantFinanceStats{}, err
		}

		total, count := sumRevenue(rangeFacts)

		todayFacts := lo.Filter(monthFacts, func(f domain.OrderFact, _ int) bool {
			return !f.CreatedAt.Before(today)
		})
		todayRevenue, _ := sumRevenue(todayFacts)

		return domain.MerchantFinanceStats{
			TotalRevenue:   total,
			TodayRevenue:   todayRevenue,
			AvgOrderAmount: averageAmount(total, count),
			Monthly:        e.monthlySeries(monthFacts, firstMonth, financeMonths),
		}, nil
	})
	if err != nil {
		e.degraded("merchant finance", scope, err)
		return domain.MerchantFinanceStats{
			TotalRevenue:   decimal.Zero,
			TodayRevenue:   decimal.Zero,
			AvgOrderAmount: decimal.Zero,
			Monthly:        e.monthlySeries(nil, firstMonth, financeMonths),
		}, nil
	}
	return result, nil
}

// ListOrders pages through orders newest first. Admin and merchant listings
// differ only in scope.
func (e *StatisticsEngine) ListOrders(ctx context.Context, query ListQuery) (domain.Page[domain.Order], error) {
	page := query.Page.Normalize(e.maxPageSize)

	filter := query.Scope.filter()
	if query.Status != "" {
		if !query.Status.Valid() {
			return domain.Page[domain.Order]{}, fmt.Errorf("%w: %w: %q", ErrOrderInvalidInput, domain.ErrInvalidOrderStatus, query.Status)
		}
		filter.Statuses = []domain.OrderStatus{query.Status}
	}

	if query.From != nil || query.To != nil {
		rng := domain.TimeRange{}
		if query.From != nil {
			rng.After = lo.ToPtr(e.startOfDay(*query.From))
		}
		if query.To != nil {
			rng.Before = lo.ToPtr(e.startOfDay(*query.To).AddDate(0, 0, 1))
		}
		if err := rng.Validate(); err != nil {
			return domain.Page[domain.Order]{}, fmt.Errorf("%w: %w", ErrOrderInvalidInput, err)
		}
		filter.CreatedAt = &rng
	}

	result, err := e.orders.SearchOrders(ctx, filter, page)
	if err != nil {
		e.degraded("order list", query.Scope, err)
		return domain.NewPage[domain.Order](nil, 0, page), nil
	}
	return result, nil
}

func (e *StatisticsEngine) revenueFacts(ctx context.Context, scope StatsScope, from, to time.Time) ([]domain.OrderFact, error) {
	filter := scope.filter()
	filter.Statuses = domain.RevenueStatuses()
	filter.CreatedAt = e.dayRange(from, to)

	facts, err := e.orders.ScanOrderFacts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.ScanOrderFacts: %w", err)
	}
	return facts, nil
}

func (e *StatisticsEngine) degraded(aggregate string, scope StatsScope, err error) {
	e.logger.Error("statistics degraded",
		zap.String("aggregate", aggregate),
		zap.String("scope", scope.key()),
		zap.Error(err),
	)
}

func (e *StatisticsEngine) today() time.Time {
	return e.startOfDay(e.clock())
}

func (e *StatisticsEngine) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc)
}

// dayRange covers the calendar days from and to, both inclusive.
func (e *StatisticsEngine) dayRange(from, to time.Time) *domain.TimeRange {
	after := e.startOfDay(from)
	before := e.startOfDay(to).AddDate(0, 0, 1)
	return &domain.TimeRange{After: &after, Before: &before}
}

// window fills missing bounds: to defaults to today, from to days-1 before to.
func (e *StatisticsEngine) window(from, to *time.Time, days int) (time.Time, time.Time) {
	end := e.today()
	if to != nil {
		end = e.startOfDay(*to)
	}

	start := end.AddDate(0, 0, -(days - 1))
	if from != nil {
		start = e.startOfDay(*from)
	}

	return start, end
}

func (e *StatisticsEngine) validateDays(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrOrderInvalidInput, from.Format(dateLayout), to.Format(dateLayout))
	}
	if to.Sub(from) >= maxStatsDays*24*time.Hour {
		return fmt.Errorf("%w: date range exceeds %d days", ErrOrderInvalidInput, maxStatsDays)
	}
	return nil
}

func (e *StatisticsEngine) dailySeries(facts []domain.OrderFact, from, to time.Time) []domain.DailySales {
	byDay := make(map[string]*domain.DailySales)
	series := []domain.DailySales{}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		series = append(series, domain.DailySales{Date: day.Format(dateLayout), Revenue: decimal.Zero})
	}
	for i := range series {
		byDay[series[i].Date] = &series[i]
	}

	for _, fact := range facts {
		if !fact.Status.CountsTowardRevenue() {
			continue
		}
		if day, ok := byDay[fact.CreatedAt.In(e.loc).Format(dateLayout)]; ok {
			day.OrderCount++
			day.Revenue = day.Revenue.Add(fact.Total)
		}
	}

	return series
}

func (e *StatisticsEngine) monthlySeries(facts []domain.OrderFact, firstMonth time.Time, months int) []domain.MonthlySales {
	series := make([]domain.MonthlySales, months)
	index := make(map[string]int, months)

	for i := range series {
		month := firstMonth.AddDate(0, i, 0).Format(monthLayout)
		series[i] = domain.MonthlySales{Month: month, Revenue: decimal.Zero}
		index[month] = i
	}

	for _, fact := range facts {
		if !fact.Status.CountsTowardRevenue() {
			continue
		}
		if i, ok := index[fact.CreatedAt.In(e.loc).Format(monthLayout)]; ok {
			series[i].OrderCount++
			series[i].Revenue = series[i].Revenue.Add(fact.Total)
		}
	}

	return series
}

func statusBreakdown(facts []domain.OrderFact) []domain.StatusCount {
	counts := lo.CountValuesBy(facts, func(f domain.OrderFact) domain.OrderStatus { return f.Status })

	return lo.Map(domain.OrderStatuses(), func(status domain.OrderStatus, _ int) domain.StatusCount {
		return domain.StatusCount{
			Status: status,
			Label:  status.Label(),
			Count:  int64(counts[status]),
		}
	})
}

// sumRevenue is the single place deciding which orders count as revenue.
func sumRevenue(facts []domain.OrderFact) (decimal.Decimal, int64) {
	total := decimal.Zero
	var count int64

	for _, fact := range facts {
		if !fact.Status.CountsTowardRevenue() {
			continue
		}
		total = total.Add(fact.Total)
		count++
	}

	return total, count
}

func averageAmount(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(count), 2)
}

func cached[T any](ctx context.Context, e *StatisticsEngine, key string, load func(context.Context) (T, error)) (T, error) {
	if e.cache == nil {
		return load(ctx)
	}

	key = "stats:" + key

	var value T
	err := e.cache.Get(ctx, key, &value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, port.ErrStatsCacheMiss) {
		e.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}

	if err := e.cache.Set(ctx, key, value, e.cacheTTL); err != nil {
		e.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}

	return value, nil
}
