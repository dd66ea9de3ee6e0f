package service

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/importcjj/sensitive"
)

// 评论最大长度（字符）
const maxCommentLength = 2000

// ContentFilter 评论内容过滤：屏蔽敏感词，原文保存，转义交给展示端
type ContentFilter struct {
	filter *sensitive.Filter
}

// NewContentFilter 创建内容过滤器
func NewContentFilter(words []string) *ContentFilter {
	filter := sensitive.New()
	if len(words) > 0 {
		filter.AddWord(words...)
	}
	return &ContentFilter{filter: filter}
}

// LoadSensitiveWords 从文件加载Base64编码的敏感词，每行一个
func LoadSensitiveWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开敏感词文件失败: %w", err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			// 跳过无法解码的行
			continue
		}
		if word := strings.TrimSpace(string(decoded)); word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取敏感词文件出错: %w", err)
	}
	return words, nil
}

// Clean 过滤评论内容，返回清理后的文本
func (f *ContentFilter) Clean(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return "", ErrContentTooLong
	}

	content = f.filter.Replace(content, '*')
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}
