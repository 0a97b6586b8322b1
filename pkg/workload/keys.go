package workload

import (
	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/generator"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/pingcap/errors"
)

// keyRange is the inclusive range of key numbers written in the load phase.
type keyRange struct {
	lower int64
	upper int64
}

func loadKeyRange(p *properties.Properties, recordCount int64) (keyRange, error) {
	insertStart := p.GetInt64(prop.InsertStart, prop.InsertStartDefault)
	insertCount := p.GetInt64(prop.InsertCount, recordCount-insertStart)
	if insertCount <= 0 {
		return keyRange{}, errors.Errorf("insert count %d must be positive", insertCount)
	}
	if recordCount < insertStart+insertCount {
		return keyRange{}, errors.Errorf("record count %d must be bigger than insert start %d + count %d",
			recordCount, insertStart, insertCount)
	}
	return keyRange{lower: insertStart, upper: insertStart + insertCount - 1}, nil
}

// newKeyChooser builds the generator picking key numbers in kr.
func newKeyChooser(p *properties.Properties, kr keyRange) (ycsb.Generator, error) {
	requestDistrib := p.GetString(prop.RequestDistribution, prop.RequestDistributionDefault)
	switch requestDistrib {
	case "uniform":
		return generator.NewUniform(kr.lower, kr.upper), nil
	case "sequential":
		return generator.NewSequential(kr.lower, kr.upper), nil
	case "zipfian":
		return generator.NewScrambledZipfian(kr.lower, kr.upper, generator.ZipfianConstant), nil
	case "hotspot":
		hotsetFraction := p.GetFloat64(prop.HotspotDataFraction, prop.HotspotDataFractionDefault)
		hotopnFraction := p.GetFloat64(prop.HotspotOpnFraction, prop.HotspotOpnFractionDefault)
		return generator.NewHotspot(kr.lower, kr.upper, hotsetFraction, hotopnFraction), nil
	default:
		return nil, errors.Errorf("unknown request distribution %s", requestDistrib)
	}
}
