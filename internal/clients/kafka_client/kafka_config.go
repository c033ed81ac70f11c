package kafka_client

type KafkaConfig struct {
	Broker          string
	Topic           string
	TransactionalID string
}

func (c KafkaConfig) withDefaults() KafkaConfig {
	if c.Broker == "" {
		c.Broker = "localhost:29092"
	}
	if c.Topic == "" {
		c.Topic = KAFKA_TOPIC_ANNOTATED_IDEAS
	}
	if c.TransactionalID == "" {
		c.TransactionalID = "ideiamap-exporter-1"
	}
	return c
}
