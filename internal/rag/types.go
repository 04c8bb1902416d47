package rag

// TextUnit 索引与检索的最小文本单元，目前按文档页划分
type TextUnit struct {
	Content string
	Page    int
	Source  string
}

// RetrievedUnit 命中单元及其与查询的相似度
type RetrievedUnit struct {
	Unit  TextUnit
	Score float64
}
