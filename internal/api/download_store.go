package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// reportDownloadTTL 报告下载链接有效期
const reportDownloadTTL = 30 * time.Minute

type reportDownload struct {
	filePath  string
	runID     string
	expiresAt time.Time
}

type reportDownloadStore struct {
	mu    sync.Mutex
	items map[string]reportDownload
}

func newReportDownloadStore() *reportDownloadStore {
	return &reportDownloadStore{
		items: make(map[string]reportDownload),
	}
}

func (s *reportDownloadStore) put(filePath, runID string, ttl time.Duration) (token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	token = newRandomToken(24)
	s.items[token] = reportDownload{
		filePath:  filePath,
		runID:     runID,
		expiresAt: time.Now().Add(ttl),
	}
	return token
}

func (s *reportDownloadStore) get(token string) (reportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(time.Now())

	v, ok := s.items[token]
	return v, ok
}

func (s *reportDownloadStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// purgeExpiredLocked 删除过期的下载链接；报告文件保留在数据目录中
func (s *reportDownloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
