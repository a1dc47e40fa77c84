package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// notFoundKind 描述一类"不存在"错误：S3 错误码与网关包装后的文本特征。
type notFoundKind struct {
	codes    []string
	messages []string
}

var (
	missingKey = notFoundKind{
		codes:    []string{"nosuchkey", "notfound"},
		messages: []string{"nosuchkey", "specified key does not exist"},
	}
	missingBucket = notFoundKind{
		codes:    []string{"nosuchbucket"},
		messages: []string{"nosuchbucket", "specified bucket does not exist"},
	}
)

func (k notFoundKind) match(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		code := strings.ToLower(strings.TrimSpace(minioErr.Code))
		for _, c := range k.codes {
			if code == c {
				return true
			}
		}
	}

	lower := strings.ToLower(err.Error())
	for _, m := range k.messages {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// IsNoSuchKey 判断错误是否表示对象不存在。
func IsNoSuchKey(err error) bool { return missingKey.match(err) }

// IsNoSuchBucket 判断错误是否表示 Bucket 不存在。
func IsNoSuchBucket(err error) bool { return missingBucket.match(err) }
