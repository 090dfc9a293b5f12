package capacity

// Limits is the per-category default limit policy. The ledger creates
// unknown keys lazily with the limit this policy returns, mirroring the
// permissive lazy-init behavior the booking flow relies on.
type Limits struct {
	BedsPerWard      int
	TestTotalQuota   int
	SlotsPerTimeSlot int
}

func (l Limits) For(key Key) int {
	switch key.Resource.Category {
	case CategoryBed:
		if key.Bucket.Kind() == BucketDay {
			return l.BedsPerWard
		}
	case CategoryTest:
		switch key.Bucket.Kind() {
		case BucketTotal:
			return l.TestTotalQuota
		case BucketSlot:
			return l.SlotsPerTimeSlot
		}
	}
	// Unknown category/bucket combinations admit nothing.
	return 0
}
