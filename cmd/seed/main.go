// seed 通过 service 层写入演示数据，并输出各阶段耗时
//
//	N=200 CONC=4 POSTS=3 go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialfeed/config"
	"github.com/d60-Lab/socialfeed/internal/media"
	"github.com/d60-Lab/socialfeed/internal/model"
	"github.com/d60-Lab/socialfeed/internal/repository"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/database"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

const seedPassword = "seed-password"

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	repos := repository.NewRepositories(db)
	storage := media.NewLocalStorage(cfg.Media.Root, cfg.Media.URLPrefix, cfg.Media.MaxUploadMB<<20)
	authSvc := service.NewAuthService(repos, cfg.Auth.BcryptCost)
	feedSvc := service.NewFeedService(repos, storage)
	socialSvc := service.NewSocialService(repos, nil)
	messageSvc := service.NewMessageService(repos, storage)

	ctx := context.Background()
	N := envInt("N", 200)
	CONC := envInt("CONC", 1)
	POSTS := envInt("POSTS", 3)
	stamp := strconv.FormatInt(time.Now().Unix(), 36)

	// celebrity 被所有人关注
	celeb := signup(ctx, authSvc, "celeb_"+stamp)
	users := make([]*model.User, N)
	t0 := time.Now()
	for i := range users {
		users[i] = signup(ctx, authSvc, fmt.Sprintf("user%d_%s", i, stamp))
	}
	signupDur := time.Since(t0)

	for i := 0; i < POSTS; i++ {
		_, err := feedSvc.CreatePost(ctx, celeb.ID, service.PostInput{Content: fmt.Sprintf("celebrity post #%d", i+1)}, nil)
		if err != nil {
			logger.Error("create post failed", zap.Error(err))
		}
	}

	followRecs := runConcurrent(N, CONC, func(i int) error {
		_, err := socialSvc.ToggleFollow(ctx, users[i].ID, celeb.Username)
		return err
	})

	feedRecs := runConcurrent(N, CONC, func(i int) error {
		_, err := feedSvc.Feed(ctx, users[i].ID)
		return err
	})

	for i := 0; i < N && i < 10; i++ {
		if _, err := messageSvc.Send(ctx, users[i].ID, celeb.Username, service.MessageInput{Body: "hi!"}, nil); err != nil {
			logger.Error("send message failed", zap.Error(err))
		}
	}
	inbox0 := time.Now()
	convs, err := messageSvc.Inbox(ctx, celeb.ID)
	if err != nil {
		logger.Error("inbox failed", zap.Error(err))
	}
	inboxDur := time.Since(inbox0)

	fmt.Printf("N=%d, CONC=%d, POSTS=%d, celebrity=%s\n", N, CONC, POSTS, celeb.Username)
	fmt.Printf("Signup total: %v, per op: %v\n", signupDur, signupDur/time.Duration(N))
	fmt.Printf("Follow toggle p50: %v, p95: %v, p99: %v\n", pct(followRecs, 0.50), pct(followRecs, 0.95), pct(followRecs, 0.99))
	fmt.Printf("Feed read    p50: %v, p95: %v, p99: %v\n", pct(feedRecs, 0.50), pct(feedRecs, 0.95), pct(feedRecs, 0.99))
	fmt.Printf("Inbox(%d conversations) latency: %v\n", len(convs), inboxDur)
	fmt.Printf("Log in as any seeded user with password %q\n", seedPassword)
}

func signup(ctx context.Context, svc service.AuthService, username string) *model.User {
	return must(svc.Signup(ctx, service.SignupInput{Username: username, Password: seedPassword, Confirm: seedPassword}))
}

// runConcurrent 用 conc 个 worker 执行 n 次 op，返回每次耗时
func runConcurrent(n, conc int, op func(i int) error) []time.Duration {
	if conc > n {
		conc = n
	}
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	recs := make(chan time.Duration, n)
	done := make(chan struct{}, conc)
	for w := 0; w < conc; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				if err := op(i); err != nil {
					logger.Warn("seed op failed", zap.Int("i", i), zap.Error(err))
				}
				recs <- time.Since(st)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < conc; w++ {
		<-done
	}
	close(recs)

	out := make([]time.Duration, 0, n)
	for d := range recs {
		out = append(out, d)
	}
	return out
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}
