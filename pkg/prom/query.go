package prom

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/common/model"
	log "github.com/sirupsen/logrus"
)

// ResultHandler 定义处理单个样本的函数类型
type ResultHandler func(sample *model.Sample) error

// ExecuteQuery 执行 Prometheus 即时查询并逐个样本交给 handler
// 返回样本数量
func ExecuteQuery(ctx context.Context, client *Client, query string, ts time.Time, handler ResultHandler) (int, error) {
	result, warnings, err := client.Query(ctx, query, ts)
	if err != nil {
		return 0, fmt.Errorf("query execution failed: %w", err)
	}

	for _, warning := range warnings {
		log.WithField("query", query).Warnf("query warning: %v", warning)
	}

	return processResult(result, handler)
}

// processResult 处理查询结果的公共逻辑
func processResult(result model.Value, handler ResultHandler) (int, error) {
	switch v := result.(type) {
	case model.Vector:
		for _, sample := range v {
			if err := handler(sample); err != nil {
				return 0, err
			}
		}
		return len(v), nil
	default:
		return 0, fmt.Errorf("unexpected result type: %T", result)
	}
}
