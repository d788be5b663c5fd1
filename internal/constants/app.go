package constants

import "time"

const (
	// DefaultCandidateUserID 未传 candidate_user_id 时使用的演示用户
	DefaultCandidateUserID = "test_candidate_user_001"

	// DefaultEmbeddingDimensions 向量模型不可用时的占位维度
	DefaultEmbeddingDimensions = 384

	DefaultRankingCacheTTL = 10 * time.Minute

	// 简历原件在对象存储中的前缀
	ResumeObjectPrefix     = "resumes/"
	// 解析出的纯文本在对象存储中的前缀
	ParsedTextObjectPrefix = "parsed/"
)

// RabbitMQ 领域事件
const (
	EventsExchange = "resume.match.events"

	RoutingKeyResumeParsed          = "resume.parsed"
	RoutingKeyJobUpdated            = "job.updated"
	RoutingKeyInterviewRequested    = "interview.requested"
	RoutingKeyAvailabilitySubmitted = "availability.submitted"
)
