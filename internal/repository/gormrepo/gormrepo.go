// Package gormrepo 基于GORM的仓储实现
package gormrepo

import (
	"errors"
	"fmt"

	"github.com/zemenay/techpulse-api/internal/repository"
	"gorm.io/gorm"
)

// translate 将GORM错误转换为仓储错误
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
