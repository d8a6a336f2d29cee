package gormql

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/ichaly/gormql/internal"
	"github.com/ichaly/gormql/store"
	"github.com/ichaly/gormql/utl"
)

// 远端关联请求的默认超时
const remoteTimeout = 10 * time.Second

// remoteClient 跨服务关联共享的HTTP客户端
var remoteClient = &http.Client{Timeout: remoteTimeout}

// remoteRequest 远端GraphQL请求体
type remoteRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// remoteResponse 远端GraphQL响应体,只取本次查询的数据键
type remoteResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// remoteResolver 跨服务关联:向远端服务POST查询文档
// 参数表按配置从父记录取值填入变量
func (my *Generator) remoteResolver(assoc *internal.Association) graphql.FieldResolveFn {
	remote := assoc.Remote
	return func(p graphql.ResolveParams) (interface{}, error) {
		parent, ok := p.Source.(store.Record)
		if !ok {
			return nil, nil
		}
		variables := make(map[string]any, len(remote.Args))
		for argName, fieldName := range remote.Args {
			variables[argName] = parent[fieldName]
		}

		body, err := utl.MarshalJSON(remoteRequest{
			Query:     remote.Query,
			Variables: variables,
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(p.Context, http.MethodPost, remote.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := remoteClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("远端关联请求失败: %w", err)
		}
		defer func() { _ = res.Body.Close() }()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("远端关联响应读取失败: %w", err)
		}
		var payload remoteResponse
		if err = utl.UnmarshalJSON(raw, &payload); err != nil {
			return nil, fmt.Errorf("远端关联响应解析失败: %w", err)
		}
		if len(payload.Errors) > 0 {
			return nil, fmt.Errorf("远端关联返回错误: %s", payload.Errors[0].Message)
		}

		// 响应按查询名取数,单键响应直接取唯一值
		if data, has := payload.Data[assoc.Name]; has {
			return data, nil
		}
		if len(payload.Data) == 1 {
			for _, key := range utl.MapKeys(payload.Data) {
				return payload.Data[key], nil
			}
		}
		return nil, nil
	}
}
