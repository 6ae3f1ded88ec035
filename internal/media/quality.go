package media

// QualifiesFor reports whether format represents equal-or-lower
// quality than the asset, i.e. whether converting is worth doing at
// all. Encoding to a higher bitrate than the source is slow and
// yields an artifact that pretends to more quality than the source
// carries, so such formats are rejected up front.
//
// The track-level bitrate is compared when the probe reported one;
// otherwise the overall file bitrate stands in. A format with no
// bitrate constraint always qualifies.
func (a *Asset) QualifiesFor(f *Format) bool {
	audioBitrate := a.Bitrate
	if a.Audio != nil && a.Audio.Bitrate > 0 {
		audioBitrate = a.Audio.Bitrate
	}
	if audioBitrate < f.AudioBitrate {
		return false
	}

	if a.Kind == KindVideo && f.Kind == KindVideo {
		videoBitrate := a.Bitrate
		if a.Video != nil && a.Video.Bitrate > 0 {
			videoBitrate = a.Video.Bitrate
		}
		if videoBitrate < f.VideoBitrate {
			return false
		}
	}

	return true
}
