package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/sony/gobreaker"
	"github.com/zemenay/techpulse-api/internal/dto"
	"github.com/zemenay/techpulse-api/internal/metrics"
	"github.com/zemenay/techpulse-api/internal/model"
	"github.com/zemenay/techpulse-api/internal/repository"
	"github.com/zemenay/techpulse-api/pkg/markdown"
	"github.com/zemenay/techpulse-api/pkg/pagination"
	"go.uber.org/zap"
)

const reindexBatchSize = 200

// Searcher 文章全文搜索
type Searcher interface {
	Search(ctx context.Context, keyword string, page pagination.Params) (*dto.SearchResponse, error)
}

// DisabledSearch 未启用Elasticsearch时使用
type DisabledSearch struct{}

// Search 总是返回不可用
func (DisabledSearch) Search(context.Context, string, pagination.Params) (*dto.SearchResponse, error) {
	metrics.SearchRequests.WithLabelValues("rejected").Inc()
	return nil, ErrSearchUnavailable
}

// SearchService 基于Elasticsearch的文章搜索服务
type SearchService struct {
	client  *elasticsearch.Client
	index   string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

// NewSearchService 创建搜索服务，搜索请求经过熔断器
func NewSearchService(client *elasticsearch.Client, index string, logger *zap.SugaredLogger) *SearchService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "elasticsearch-search",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("熔断器 %s 状态变化: %s -> %s", name, from, to)
		},
	})
	return &SearchService{client: client, index: index, breaker: breaker, logger: logger}
}

// IndexArticle 写入或覆盖文章文档
func (s *SearchService) IndexArticle(ctx context.Context, article *model.Article) error {
	body, err := s.document(article)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: article.ESDocID(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("索引文章失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("索引文章返回错误: %s", res.String())
	}
	return nil
}

// DeleteArticle 删除文章文档，文档不存在视为成功
func (s *SearchService) DeleteArticle(ctx context.Context, articleID uint) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: (&model.Article{Base: model.Base{ID: articleID}}).ESDocID(),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("删除文章索引失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("删除文章索引返回错误: %s", res.String())
	}
	return nil
}

// Search 按关键词搜索已发布文章
func (s *SearchService) Search(ctx context.Context, keyword string, page pagination.Params) (*dto.SearchResponse, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.search(ctx, keyword, page)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.SearchRequests.WithLabelValues("rejected").Inc()
			return nil, ErrSearchUnavailable
		}
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SearchRequests.WithLabelValues("ok").Inc()
	return result.(*dto.SearchResponse), nil
}

type searchHit struct {
	Score     float64             `json:"_score"`
	Source    model.ESArticle     `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

func (s *SearchService) search(ctx context.Context, keyword string, page pagination.Params) (*dto.SearchResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(keyword, page)); err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(&buf),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("搜索请求失败: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("搜索返回错误: %s", res.String())
	}
	return parseSearchResult(res.Body, page)
}

// buildSearchQuery 构建ES查询
func buildSearchQuery(keyword string, page pagination.Params) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  keyword,
							"fields": []string{"title^3", "summary^2", "content", "tags^2", "categories"},
							"type":   "best_fields",
						},
					},
				},
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"published": true}},
				},
			},
		},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"title":   map[string]interface{}{},
				"content": map[string]interface{}{},
			},
			"pre_tags":            []string{"<em>"},
			"post_tags":           []string{"</em>"},
			"fragment_size":       150,
			"number_of_fragments": 3,
		},
		"from": page.Offset(),
		"size": page.Limit,
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"published_at": map[string]interface{}{"order": "desc"}},
		},
	}
}

func parseSearchResult(body io.Reader, page pagination.Params) (*dto.SearchResponse, error) {
	var result searchResult
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("解析搜索结果失败: %w", err)
	}

	hits := make([]dto.SearchHit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		var highlights []string
		highlights = append(highlights, h.Highlight["title"]...)
		highlights = append(highlights, h.Highlight["content"]...)
		hits = append(hits, dto.SearchHit{
			ArticleID:  h.Source.ArticleID,
			Title:      h.Source.Title,
			Summary:    h.Source.Summary,
			AuthorName: h.Source.AuthorName,
			Tags:       h.Source.Tags,
			Highlights: highlights,
			Score:      h.Score,
			CreatedAt:  h.Source.CreatedAt,
		})
	}
	return &dto.SearchResponse{
		Data:       hits,
		Pagination: pagination.NewMeta(result.Hits.Total.Value, page),
	}, nil
}

// Reindex 使用批量接口重建全部已发布文章的索引
func (s *SearchService) Reindex(ctx context.Context, articles repository.ArticleRepository) (int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     s.client,
		Index:      s.index,
		NumWorkers: 2,
	})
	if err != nil {
		return 0, fmt.Errorf("创建批量索引器失败: %w", err)
	}

	var afterID uint
	indexed := 0
	for {
		batch, err := articles.ListForIndex(ctx, afterID, reindexBatchSize)
		if err != nil {
			_ = bi.Close(ctx)
			return indexed, err
		}
		if len(batch) == 0 {
			break
		}
		for i := range batch {
			body, err := s.document(&batch[i])
			if err != nil {
				s.logger.Warnf("跳过文章 %d: %v", batch[i].ID, err)
				continue
			}
			err = bi.Add(ctx, esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: batch[i].ESDocID(),
				Body:       bytes.NewReader(body),
				OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						s.logger.Errorf("索引文档 %s 失败: %v", item.DocumentID, err)
						return
					}
					s.logger.Errorf("索引文档 %s 失败: %s", item.DocumentID, res.Error.Reason)
				},
			})
			if err != nil {
				_ = bi.Close(ctx)
				return indexed, fmt.Errorf("添加批量索引项失败: %w", err)
			}
			indexed++
		}
		afterID = batch[len(batch)-1].ID
	}

	if err := bi.Close(ctx); err != nil {
		return indexed, fmt.Errorf("提交批量索引失败: %w", err)
	}
	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return int(stats.NumIndexed), fmt.Errorf("%s 个文档索引失败", strconv.FormatUint(stats.NumFailed, 10))
	}
	s.logger.Infof("重建索引完成，共 %d 篇文章", stats.NumIndexed)
	return int(stats.NumIndexed), nil
}

// document 文章转换为ES文档JSON，正文为纯文本
func (s *SearchService) document(article *model.Article) ([]byte, error) {
	text, err := markdown.PlainText(markdown.ToHTML(article.Content))
	if err != nil {
		return nil, fmt.Errorf("提取正文失败: %w", err)
	}
	return json.Marshal(article.ToSearchDocument(text))
}
