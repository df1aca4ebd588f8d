package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/cache"
	"github.com/confessly/confessly/internal/pkg/database"
)

const (
	CacheKeyConfessionsTotal = "statistics:confessions:total"
	CacheKeyConfessionsDaily = "statistics:confessions:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers            = "statistics:users:total"
	CacheExpiration          = 30 * time.Minute
)

// StatisticsData holds the public counters shown on the landing page.
type StatisticsData struct {
	TodayConfessions int
	TotalConfessions int
	TotalUsers       int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached counters are stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached counters when they are stale.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Failed to update statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next check to refresh the cache.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recounts confessions and users and stores the values
// in the cache.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalConfessions int64
	if err := db.Model(&models.Confession{}).Count(&totalConfessions).Error; err != nil {
		log.Printf("Error counting total confessions: %v", err)
		return err
	}

	var todayConfessions int64
	today := time.Now().UTC().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.Confession{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayConfessions).Error; err != nil {
		log.Printf("Error counting today's confessions: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyConfessionsTotal, strconv.FormatInt(totalConfessions, 10), CacheExpiration); err != nil {
		return err
	}
	dailyKey := fmt.Sprintf(CacheKeyConfessionsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayConfessions, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		return err
	}

	return nil
}

// GetStatistics returns the cached counters, refreshing them when stale.
func GetStatistics() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalConfessions: getCachedCount(CacheKeyConfessionsTotal),
		TodayConfessions: getCachedCount(fmt.Sprintf(CacheKeyConfessionsDaily, time.Now().UTC().Format("2006-01-02"))),
		TotalUsers:       getCachedCount(CacheKeyUsers),
	}
}

func getCachedCount(key string) int {
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return count
}
