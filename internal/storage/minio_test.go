package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidObjectKey 测试对象键校验
func TestValidObjectKey(t *testing.T) {
	assert.True(t, validObjectKey("reports/2024/q1.pdf"))
	assert.True(t, validObjectKey("507f1f77bcf86cd799439011"))

	assert.False(t, validObjectKey(""))
	assert.False(t, validObjectKey("   "))
	assert.False(t, validObjectKey("../etc/passwd"))
}

// TestMetadataMatches 测试元数据筛选（键大小写不敏感）
func TestMetadataMatches(t *testing.T) {
	got := map[string]string{"Studentid": "s1", "Courseid": "c1"}

	assert.True(t, metadataMatches(got, nil))
	assert.True(t, metadataMatches(got, map[string]string{"studentId": "s1"}))
	assert.False(t, metadataMatches(got, map[string]string{"studentId": "s2"}))
	assert.False(t, metadataMatches(got, map[string]string{"chapterId": "ch1"}))
}
