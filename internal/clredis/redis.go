package clredis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
)

const (
	captchaPrefix = "captcha:"
	dailyKey      = "analytics:daily:%s"
	visitorsKey   = "analytics:visitors:%s"
	counterTTL    = 31 * 24 * time.Hour
)

// NewClient retourne nil si aucune adresse n'est configurée
func NewClient(cfg clconfig.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.Db,
	})
}

// CaptchaStore implémente base64Captcha.Store sur Redis
type CaptchaStore struct {
	client     *redis.Client
	expiration time.Duration
}

func NewCaptchaStore(client *redis.Client) *CaptchaStore {
	return &CaptchaStore{
		client:     client,
		expiration: 5 * time.Minute,
	}
}

func (r *CaptchaStore) Set(id string, value string) error {
	return r.client.Set(context.Background(), captchaPrefix+id, value, r.expiration).Err()
}

func (r *CaptchaStore) Get(id string, clear bool) string {
	ctx := context.Background()
	key := captchaPrefix + id
	if clear {
		val, _ := r.client.GetDel(ctx, key).Result()
		return val
	}
	val, _ := r.client.Get(ctx, key).Result()
	return val
}

func (r *CaptchaStore) Verify(id, answer string, clear bool) bool {
	v := r.Get(id, clear)
	return v != "" && v == answer
}

// DayCounter tient les compteurs temps réel du jour (pages vues, visiteurs distincts)
type DayCounter struct {
	client *redis.Client
}

func NewDayCounter(client *redis.Client) *DayCounter {
	return &DayCounter{client: client}
}

// Hit compte une page vue pour l'adresse donnée
func (d *DayCounter) Hit(ctx context.Context, day, address string) error {
	pipe := d.client.TxPipeline()
	daily := fmt.Sprintf(dailyKey, day)
	visitors := fmt.Sprintf(visitorsKey, day)
	pipe.HIncrBy(ctx, daily, "page_views", 1)
	pipe.Expire(ctx, daily, counterTTL)
	pipe.SAdd(ctx, visitors, address)
	pipe.Expire(ctx, visitors, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Read retourne les pages vues et visiteurs distincts du jour
func (d *DayCounter) Read(ctx context.Context, day string) (int64, int64, error) {
	pageViews, err := d.client.HGet(ctx, fmt.Sprintf(dailyKey, day), "page_views").Int64()
	if err != nil && err != redis.Nil {
		return 0, 0, err
	}

	uniqueVisitors, err := d.client.SCard(ctx, fmt.Sprintf(visitorsKey, day)).Result()
	if err != nil && err != redis.Nil {
		return 0, 0, err
	}

	return pageViews, uniqueVisitors, nil
}
