package analysis

// Clothing recommendation tags.
const (
	tagBibShorts     = "Bib Shorts"
	tagTights        = "Tights"
	tagLegWarmers    = "Leg Warmers"
	tagJersey        = "Jersey"
	tagLongSleeve    = "Long Sleeve Jersey"
	tagThermalJersey = "Thermal Jersey"
	tagArmWarmers    = "Arm Warmers"
	tagVest          = "Vest"
	tagJacket        = "Jacket"
	tagWinterJacket  = "Winter Jacket"
	tagOversocks     = "Oversocks"
	tagToeCovers     = "Toe Covers"
	tagBuff          = "Buff"
)

const (
	minClothingTempC   = 5.0
	shortsTempC        = 14.0
	legWarmersMaxTempC = 19.0
	longSleeveTempC    = 15.0
	shortSleeveTempC   = 22.0
	outerLayerTempC    = 19.0
	jacketWindKmh      = 15.0
	winterJacketTempC  = 8.0
	oversocksTempC     = 8.0
	toeCoversTempC     = 14.0
	buffTempC          = 8.0
	armWarmerEarlyMaxC = 16.0
	armWarmerLateMinC  = 19.0
	armWarmerWarmingC  = 3.0
)

type clothingInput struct {
	tMax       float64
	tMin       float64
	windMax    float64
	activeRain float64
	morningOK  bool
	earlyTempC float64 // mean 09:00–11:00
	lateTempC  float64 // mean 11:00–18:00
	mountain   bool
}

// clothing derives the recommendation tag list. The rules are a fixed
// decision table over day aggregates; hints keep first-insertion order and
// are deduplicated. Nil means no sensible recommendation exists for the day.
func clothing(in clothingInput) []string {
	if in.tMax < minClothingTempC {
		return nil
	}
	if in.activeRain > dryThresholdMm && !in.morningOK {
		return nil
	}

	var tags []string
	add := func(t string) {
		for _, have := range tags {
			if have == t {
				return
			}
		}
		tags = append(tags, t)
	}

	if in.tMax >= shortsTempC {
		add(tagBibShorts)
		if in.tMax < legWarmersMaxTempC {
			add(tagLegWarmers)
		}
	} else {
		add(tagTights)
	}

	// A morning that starts under 16°C but warms past 19°C by more than
	// 3°C rides with arm warmers over a short-sleeve jersey. The arm
	// warmers deliberately downgrade the long-sleeve jersey choice.
	armWarmers := in.earlyTempC < armWarmerEarlyMaxC &&
		in.lateTempC > armWarmerLateMinC &&
		in.lateTempC-in.earlyTempC >= armWarmerWarmingC

	winter := in.tMax < winterJacketTempC
	if winter {
		// Winter jacket replaces both the jersey pick and the vest/jacket
		// outer layer.
		add(tagWinterJacket)
	} else {
		switch {
		case in.tMax >= shortSleeveTempC:
			add(tagJersey)
		case in.tMax >= longSleeveTempC:
			if armWarmers {
				add(tagJersey)
				add(tagArmWarmers)
			} else {
				add(tagLongSleeve)
			}
		default:
			add(tagThermalJersey)
		}
		if in.tMax < outerLayerTempC {
			if in.windMax >= jacketWindKmh || in.mountain {
				add(tagJacket)
			} else {
				add(tagVest)
			}
		}
	}

	switch {
	case in.tMin < oversocksTempC:
		add(tagOversocks)
	case in.tMin < toeCoversTempC:
		add(tagToeCovers)
	}
	if in.tMin < buffTempC {
		add(tagBuff)
	}
	return tags
}
