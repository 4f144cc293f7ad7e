package audiocore

// zoneAGC is a single zone's max-follower normalizer, grounded on
// original_source's ZoneAGC struct: tracks a smoothed maximum magnitude
// and normalizes by it, preventing one loud zone (typically bass) from
// washing out the rest. Attack/release/floor are read fresh from Tuning
// on every process() call (not cached at construction) so a live tuning
// write takes effect on the next hop.
type zoneAGC struct {
	maxMag         float32
	maxMagFollower float32
}

func newZoneAGC() *zoneAGC {
	return &zoneAGC{maxMagFollower: 1.0}
}

func (z *zoneAGC) reset() {
	z.maxMag = 0
	z.maxMagFollower = 1.0
}

// process normalizes each value in-place by the zone's tracked maximum,
// updating the follower first.
func (z *zoneAGC) process(values []float32, attack, release, minFloor float32) {
	var maxVal float32
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	z.maxMag = maxVal

	if maxVal > z.maxMagFollower {
		z.maxMagFollower = lerp(z.maxMagFollower, maxVal, attack)
	} else {
		z.maxMagFollower = lerp(z.maxMagFollower, maxVal, release)
	}
	z.maxMagFollower = maxf32(z.maxMagFollower, minFloor)

	for i, v := range values {
		values[i] = minf32(1.0, v/z.maxMagFollower)
	}
}

// zoneAGCBank partitions a channel vector into NumZones equal-sized zones
// (2 bands/zone for the 8-band case, 3 bins/zone for the 12-chroma case),
// each with its own independent follower (spec §4.9 step 3).
type zoneAGCBank struct {
	zones        [NumZones]*zoneAGC
	bandsPerZone int
}

func newZoneAGCBank(numChannels int) *zoneAGCBank {
	b := &zoneAGCBank{bandsPerZone: numChannels / NumZones}
	for i := range b.zones {
		b.zones[i] = newZoneAGC()
	}
	return b
}

func (b *zoneAGCBank) reset() {
	for _, z := range b.zones {
		z.reset()
	}
}

// process normalizes values zone-by-zone in place using t's current
// zone-AGC rates.
func (b *zoneAGCBank) process(values []float32, t *TuningPipeline) {
	for i, z := range b.zones {
		lo := i * b.bandsPerZone
		hi := lo + b.bandsPerZone
		if hi > len(values) {
			hi = len(values)
		}
		z.process(values[lo:hi], t.ZoneAttack, t.ZoneRelease, t.ZoneMinFloor)
	}
}
