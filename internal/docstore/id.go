package docstore

import "github.com/google/uuid"

// newDocumentID 生成存储分配的文档 ID。对业务不透明，仅要求唯一。
func newDocumentID() string {
	return uuid.New().String()
}
