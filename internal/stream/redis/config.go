package redis

// RedisStreamConfig names the directive stream the consumer reads and
// the verdict stream it publishes to.
type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	VerdictStream string
	Group         string
	ConsumerName  string
}

func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, verdictStream string, group string, consumerName string) *RedisStreamConfig {
	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		VerdictStream: verdictStream,
		Group:         group,
		ConsumerName:  consumerName,
	}
}
