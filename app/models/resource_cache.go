package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceCache bản ghi cache một resource dữ liệu (comunas, streets, pack)
// trong MongoDB.
type ResourceCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint  string             `bson:"fingerprint" json:"fingerprint"`   // sha256 của key
	Key          string             `bson:"key" json:"key"`                   // đường dẫn resource
	Payload      []byte             `bson:"payload" json:"-"`                 // nội dung đã giải nén
	Size         int                `bson:"size" json:"size"`                 // kích thước payload
	DataVersion  string             `bson:"data_version" json:"data_version"` // phiên bản dữ liệu
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount  int                `bson:"access_count" json:"access_count"`
}

// NewResourceCache tạo mới một ResourceCache
func NewResourceCache(fingerprint, key string, payload []byte, dataVersion string) *ResourceCache {
	now := time.Now()
	return &ResourceCache{
		Fingerprint:  fingerprint,
		Key:          key,
		Payload:      payload,
		Size:         len(payload),
		DataVersion:  dataVersion,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
}

// IsValidDataVersion kiểm tra phiên bản dữ liệu có khớp không
func (rc *ResourceCache) IsValidDataVersion(currentVersion string) bool {
	return rc.DataVersion == currentVersion
}
