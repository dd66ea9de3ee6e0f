package model

import "time"

// ESArticle Elasticsearch文章文档模型
type ESArticle struct {
	ID          string    `json:"id"`         // 格式为"article_{id}"
	ArticleID   uint      `json:"article_id"` // 数据库中的文章ID
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"` // 纯文本正文
	AuthorID    uint      `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ESMapping 返回ES索引映射
func (ESArticle) ESMapping() string {
	return `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 1,
			"analysis": {
				"analyzer": {
					"text_analyzer": {
						"type": "custom",
						"tokenizer": "standard",
						"char_filter": ["html_strip"],
						"filter": ["lowercase", "asciifolding"]
					}
				}
			}
		},
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"article_id": { "type": "long" },
				"title": {
					"type": "text",
					"analyzer": "text_analyzer",
					"fields": { "keyword": { "type": "keyword" } }
				},
				"summary": { "type": "text", "analyzer": "text_analyzer" },
				"content": { "type": "text", "analyzer": "text_analyzer" },
				"author_id": { "type": "long" },
				"author_name": { "type": "keyword" },
				"categories": { "type": "keyword" },
				"tags": { "type": "keyword" },
				"published": { "type": "boolean" },
				"published_at": { "type": "date" },
				"created_at": { "type": "date" },
				"updated_at": { "type": "date" }
			}
		}
	}`
}
