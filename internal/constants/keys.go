package constants

// Redis Key 统一命名: app:{module}:{entity}:{unique_id}
const (
	AppPrefix = "app"

	// EmbeddingModulePrefix 向量模块
	EmbeddingModulePrefix = "embedding"
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"

	// EntityVector 向量实体
	EntityVector = "vector"
	// EntityRanking 排名结果实体
	EntityRanking = "ranking"

	// KeyEmbeddingVector 文本向量缓存 (STRING, JSON 数组)
	// 格式: app:embedding:vector:{model}:{sha256(text)}，%s 为 embedding.CacheKey 的结果
	KeyEmbeddingVector = AppPrefix + ":" + EmbeddingModulePrefix + ":" + EntityVector + ":%s"

	// KeyJobRanking 岗位排名缓存 (STRING, JSON)
	// 格式: app:job:ranking:{jobID}:{fingerprint}
	KeyJobRanking = AppPrefix + ":" + JobModulePrefix + ":" + EntityRanking + ":%s:%s"

	// KeyJobRankingPattern 用于按岗位清理排名缓存
	KeyJobRankingPattern = AppPrefix + ":" + JobModulePrefix + ":" + EntityRanking + ":%s:*"
)
