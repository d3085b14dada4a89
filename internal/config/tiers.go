package config

import "github.com/nsforge/nsforge/pkg/nsapi"

// TierResources is the bundle of limits applied to a namespace of a given
// resource tier. Values use Kubernetes quantity notation.
type TierResources struct {
	CPULimit     string `yaml:"cpuLimit" json:"cpuLimit"`
	MemoryLimit  string `yaml:"memoryLimit" json:"memoryLimit"`
	StorageQuota string `yaml:"storageQuota" json:"storageQuota"`
	MaxPods      int    `yaml:"maxPods" json:"maxPods"`
}

// defaultTiers is the built-in resource tier table.
var defaultTiers = map[nsapi.ResourceTier]TierResources{
	nsapi.TierMicro:  {CPULimit: "1", MemoryLimit: "2Gi", StorageQuota: "10Gi", MaxPods: 10},
	nsapi.TierSmall:  {CPULimit: "2", MemoryLimit: "4Gi", StorageQuota: "20Gi", MaxPods: 20},
	nsapi.TierMedium: {CPULimit: "4", MemoryLimit: "8Gi", StorageQuota: "50Gi", MaxPods: 50},
	nsapi.TierLarge:  {CPULimit: "8", MemoryLimit: "16Gi", StorageQuota: "100Gi", MaxPods: 100},
}

// TierFor resolves the resource bundle for a tier. An unrecognized tier
// resolves to the "small" defaults; the second return value reports whether
// that fallback was taken so callers can log it. The lookup is total: it
// never fails and always yields the same values for the same input.
func (c *Config) TierFor(tier nsapi.ResourceTier) (TierResources, bool) {
	table := make(map[nsapi.ResourceTier]TierResources, len(defaultTiers))
	for k, v := range defaultTiers {
		table[k] = v
	}
	for k, v := range c.Tiers {
		table[nsapi.ResourceTier(k)] = v
	}

	if res, ok := table[tier]; ok {
		return res, false
	}
	return table[nsapi.TierSmall], true
}
