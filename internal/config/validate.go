package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Kafka.validate(); err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	if err := c.Relay.validate(); err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	if err := c.Matching.validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Presence.validate(); err != nil {
		return fmt.Errorf("presence: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (k *KafkaConfig) validate() error {
	k.Brokers = ParseList(k.BrokersRaw)
	if len(k.Brokers) == 0 {
		return fmt.Errorf("brokers must not be empty")
	}
	if k.EventsTopic == "" || k.NotificationsTopic == "" {
		return fmt.Errorf("events_topic and notifications_topic are required")
	}
	if k.EventsTopic == k.NotificationsTopic {
		return fmt.Errorf("events_topic and notifications_topic must differ")
	}
	if k.ConsumerGroup == "" {
		return fmt.Errorf("consumer_group is required")
	}
	return nil
}

func (r *RelayConfig) validate() error {
	if r.SendTimeout <= 0 {
		return fmt.Errorf("send_timeout must be > 0 (got %v)", r.SendTimeout)
	}
	if r.BackupQueueSize <= 0 {
		return fmt.Errorf("backup_queue_size must be > 0 (got %d)", r.BackupQueueSize)
	}
	switch r.DropPolicy {
	case "oldest", "newest":
	default:
		return fmt.Errorf("drop_policy must be oldest or newest (got %q)", r.DropPolicy)
	}
	if r.DrainInterval <= 0 {
		return fmt.Errorf("drain_interval must be > 0 (got %v)", r.DrainInterval)
	}
	if r.DrainBatch <= 0 {
		return fmt.Errorf("drain_batch must be > 0 (got %d)", r.DrainBatch)
	}
	if r.FailureRateThreshold <= 0 || r.FailureRateThreshold > 1 {
		return fmt.Errorf("failure_rate_threshold must be in (0, 1] (got %v)", r.FailureRateThreshold)
	}
	if r.MinRequests <= 0 {
		return fmt.Errorf("min_requests must be > 0 (got %d)", r.MinRequests)
	}
	if r.Window <= 0 || r.OpenTimeout <= 0 {
		return fmt.Errorf("window and open_timeout must be > 0")
	}
	if r.HalfOpenMaxRequests <= 0 {
		return fmt.Errorf("half_open_max_requests must be > 0 (got %d)", r.HalfOpenMaxRequests)
	}
	return nil
}

func (m *MatchingConfig) validate() error {
	if m.MaxActiveMatches <= 0 {
		return fmt.Errorf("max_active_matches must be > 0 (got %d)", m.MaxActiveMatches)
	}
	if m.MaxRejectionsPerDay < 0 || m.MaxCancellationsPerDay < 0 {
		return fmt.Errorf("daily quotas must be >= 0")
	}
	return nil
}

func (p *PresenceConfig) validate() error {
	if p.AvailableTTL <= 0 || p.ActiveTTL <= 0 {
		return fmt.Errorf("available_ttl and active_ttl must be > 0")
	}
	if p.ReconcileInterval < 0 {
		return fmt.Errorf("reconcile_interval must be >= 0 (got %v)", p.ReconcileInterval)
	}
	return nil
}
