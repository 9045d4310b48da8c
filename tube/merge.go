package tube

// MergeOverlapping folds secondary class objects into the primary class tubes
// they travel with, eg: a bicycle into the person riding it.  Whenever a
// primary and secondary tube are seen in the same source frame with a
// bounding box IoU of at least iouThresh, the secondary mask is OR'd into the
// primary record and the primary box grows to cover both.
//
// The result holds the merged primary tubes, then the secondary tubes, then
// all other tubes.  Input tubes are left untouched, merged records get their
// own mask copy
func MergeOverlapping(tubes []*Tube, primaryClass, secondaryClass int,
	iouThresh float64) []*Tube {

	var primary, secondary, others []*Tube

	for _, t := range tubes {
		switch t.ClassID() {
		case primaryClass:
			primary = append(primary, t)
		case secondaryClass:
			secondary = append(secondary, t)
		default:
			others = append(others, t)
		}
	}

	merged := make([]*Tube, 0, len(tubes))

	for _, p := range primary {
		merged = append(merged, mergeInto(p, secondary, iouThresh))
	}

	merged = append(merged, secondary...)
	merged = append(merged, others...)

	return merged
}

// mergeInto returns a copy of p with overlapping secondary masks merged in
func mergeInto(p *Tube, secondary []*Tube, iouThresh float64) *Tube {

	out := &Tube{
		TrackID: p.TrackID,
		Records: make([]FrameRecord, len(p.Records)),
	}
	copy(out.Records, p.Records)

	// frame index -> record index lookup
	idxP := make(map[int]int, len(p.Records))

	for i, rec := range p.Records {
		idxP[rec.FrameIndex] = i
	}

	owned := make([]bool, len(p.Records))

	for _, s := range secondary {
		for _, srec := range s.Records {

			i, shared := idxP[srec.FrameIndex]

			if !shared {
				continue
			}

			prec := &out.Records[i]

			if prec.Box.IoU(srec.Box) < iouThresh {
				continue
			}

			if !owned[i] {
				prec.Mask = prec.Mask.Clone()
				owned[i] = true
			}

			prec.Mask.Or(srec.Mask)
			prec.Box = prec.Box.Union(srec.Box)

			if c, ok := prec.Mask.Centroid(); ok {
				prec.Centroid = c
			}
		}
	}

	return out
}
