package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"RaceStatSync/internal/config"
	"RaceStatSync/internal/model"
	"RaceStatSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Client 底层请求客户端：单次逻辑拉取 = 一次GET + 失败后一次重试。
// 每次调用后固定停顿，对远端限速保持礼貌；重试前的停顿更长。
type Client struct {
	cfg        *config.SourceConfig
	httpClient *http.Client
	logger     *logrus.Logger
	pause      time.Duration
	retryPause time.Duration
}

func NewClient(cfg *config.SourceConfig, logger *logrus.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
		pause:      time.Duration(cfg.PauseMs) * time.Millisecond,
		retryPause: time.Duration(cfg.RetryPauseMs) * time.Millisecond,
	}
}

// getJSON 拉取并解析一个URL；失败时停顿后重试一次，再失败返回错误。
// 返回前固定停顿一次（礼貌限速）。
func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	err := c.doOnce(ctx, url, v)
	if err != nil {
		c.logger.WithError(err).WithField("url", url).Warn("请求失败，停顿后重试一次")
		if werr := c.sleep(ctx, c.retryPause); werr != nil {
			return werr
		}
		if err = c.doOnce(ctx, url, v); err != nil {
			c.logger.WithError(err).WithField("url", url).Warn("重试仍失败，跳过该请求")
			return err
		}
	}
	if werr := c.sleep(ctx, c.pause); werr != nil {
		return werr
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读掉响应体以便复用连接
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("非成功状态码: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// sleep 可被context取消的停顿
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// fetchAllPages 拉取分页集合端点的全部条目引用。
// 翻页规则：page = pageIndex + 1，直到 pageIndex == pageCount。
// 中途某页失败则截断返回已累积的部分（部分结果照样可用），不报错。
func (c *Client) fetchAllPages(ctx context.Context, baseURL string) []string {
	var refs []string
	page := 1
	for {
		url := fmt.Sprintf("%s&limit=%d&page=%d", baseURL, c.cfg.PageLimit, page)
		var paged model.PagedRefs
		if err := c.getJSON(ctx, url, &paged); err != nil {
			c.logger.WithError(err).WithField("page", page).Warn("分页拉取失败，截断返回已获取部分")
			break
		}
		if paged.Error != nil {
			c.logger.WithField("code", paged.Error.Code).Warn("分页响应带错误标记，截断返回已获取部分")
			break
		}
		for _, item := range paged.Items {
			refs = append(refs, item.Ref)
		}
		if paged.PageIndex >= paged.PageCount {
			break
		}
		page = paged.PageIndex + 1
	}
	return refs
}

var refIDPattern = regexp.MustCompile(`/([a-z]+)/(\d+)`)

// RefID 从引用URL中提取指定实体类型后面的数字ID（本地存储的关联键是ID，不是URL）。
// 例如 entity="venues" 时匹配 /venues/(\d+)；找不到返回0。
func RefID(ref string, entity string) uint64 {
	for _, m := range refIDPattern.FindAllStringSubmatch(ref, -1) {
		if m[1] == entity {
			id, err := strconv.ParseUint(m[2], 10, 64)
			if err != nil {
				return 0
			}
			return id
		}
	}
	return 0
}
