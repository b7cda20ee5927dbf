package tags

var nikonISOExpansion = Values{
	0:     "Off",
	0x101: "Hi 0.3",
	0x102: "Hi 0.5",
	0x103: "Hi 0.7",
	0x104: "Hi 1.0",
	0x105: "Hi 1.3",
	0x106: "Hi 1.5",
	0x107: "Hi 1.7",
	0x108: "Hi 2.0",
	0x109: "Hi 2.3",
	0x10a: "Hi 2.5",
	0x10b: "Hi 2.7",
	0x10c: "Hi 3.0",
	0x201: "Lo 0.3",
	0x202: "Lo 0.5",
	0x203: "Lo 0.7",
	0x204: "Lo 1.0",
}

var nikonMain = Table{
	0x0001: {Name: "MakerNoteVersion"},
	0x0002: {Name: "ISO"},
	0x0003: {Name: "ColorMode"},
	0x0004: {Name: "Quality"},
	0x0005: {Name: "WhiteBalance"},
	0x0006: {Name: "Sharpness"},
	0x0007: {Name: "FocusMode"},
	0x0008: {Name: "FlashSetting"},
	0x0009: {Name: "FlashType"},
	0x000B: {Name: "WhiteBalanceFineTune"},
	0x000C: {Name: "WB_RBLevels"},
	0x000D: {Name: "ProgramShift"},
	0x000E: {Name: "ExposureDifference"},
	0x000F: {Name: "ISOSelection"},
	0x0010: {Name: "DataDump"},
	0x0011: {Name: "PreviewIFD", Structural: true},
	0x0012: {Name: "FlashExposureComp"},
	0x0013: {Name: "ISOSetting"},
	0x0014: {Name: "ColorBalanceA"},
	0x0016: {Name: "ImageBoundary"},
	0x0017: {Name: "ExternalFlashExposureComp"},
	0x0018: {Name: "FlashExposureBracketValue"},
	0x0019: {Name: "ExposureBracketValue"},
	0x001A: {Name: "ImageProcessing"},
	0x001B: {Name: "CropHiSpeed"},
	0x001C: {Name: "ExposureTuning"},
	0x001D: {Name: "SerialNumber"},
	0x001E: {Name: "ColorSpace", Values: Values{1: "sRGB", 2: "Adobe RGB"}},
	0x001F: {Name: "VRInfo"},
	0x0020: {Name: "ImageAuthentication", Values: Values{0: "Off", 1: "On"}},
	0x0021: {Name: "FaceDetect"},
	0x0022: {Name: "ActiveD-Lighting", Values: Values{
		0: "Off", 1: "Low", 3: "Normal", 5: "High", 7: "Extra High",
		8: "Extra High 1", 9: "Extra High 2", 10: "Extra High 3", 11: "Extra High 4", 0xffff: "Auto",
	}},
	0x0023: {Name: "PictureControlData"},
	0x0024: {Name: "WorldTime"},
	0x0025: {Name: "ISOInfo"},
	0x002A: {Name: "VignetteControl", Values: Values{0: "Off", 1: "Low", 3: "Normal", 5: "High"}},
	0x002B: {Name: "DistortInfo"},
	0x0034: {Name: "ShutterMode"},
	0x0035: {Name: "HDRInfo"},
	0x0037: {Name: "MechanicalShutterCount"},
	0x0039: {Name: "LocationInfo"},
	0x003D: {Name: "BlackLevel"},
	0x003E: {Name: "ImageSizeRAW"},
	0x0044: {Name: "JPGCompression"},
	0x0045: {Name: "CropArea"},
	0x004E: {Name: "NikonSettings"},
	0x004F: {Name: "ColorTemperatureAuto"},
	0x0080: {Name: "ImageAdjustment"},
	0x0081: {Name: "ToneComp"},
	0x0082: {Name: "AuxiliaryLens"},
	0x0083: {Name: "LensType"},
	0x0084: {Name: "Lens"},
	0x0085: {Name: "ManualFocusDistance"},
	0x0086: {Name: "DigitalZoom"},
	0x0087: {Name: "FlashMode", Values: Values{
		0: "Did Not Fire", 1: "Fired, Manual", 3: "Not Ready", 7: "Fired, External",
		8: "Fired, Commander Mode", 9: "Fired, TTL Mode", 18: "LED Light",
	}},
	0x0088: {Name: "AFInfo"},
	0x0089: {Name: "ShootingMode"},
	0x008B: {Name: "LensFStops"},
	0x008C: {Name: "ContrastCurve"},
	0x008D: {Name: "ColorHue"},
	0x008F: {Name: "SceneMode"},
	0x0090: {Name: "LightSource"},
	0x0091: {Name: "ShotInfo"},
	0x0092: {Name: "HueAdjustment"},
	0x0093: {Name: "NEFCompression", Values: Values{
		1: "Lossy (type 1)", 2: "Uncompressed", 3: "Lossless", 4: "Lossy (type 2)",
		5: "Striped packed 12 bits", 6: "Uncompressed (reduced to 12 bit)", 7: "Unpacked 12 bits",
		8: "Small", 9: "Packed 12 bits", 10: "Packed 14 bits", 13: "High Efficiency", 14: "High Efficiency*",
	}},
	0x0094: {Name: "SaturationAdj"},
	0x0095: {Name: "NoiseReduction"},
	0x0096: {Name: "NEFLinearizationTable"},
	0x0097: {Name: "ColorBalance"},
	0x0098: {Name: "LensData"},
	0x0099: {Name: "RawImageCenter"},
	0x009A: {Name: "SensorPixelSize"},
	0x009C: {Name: "SceneAssist"},
	0x009D: {Name: "DateStampMode", Values: Values{0: "Off", 1: "Date & Time", 2: "Date", 3: "Date Counter"}},
	0x009E: {Name: "RetouchHistory"},
	0x00A0: {Name: "SerialNumber2"},
	0x00A2: {Name: "ImageDataSize"},
	0x00A5: {Name: "ImageCount"},
	0x00A6: {Name: "DeletedImageCount"},
	0x00A7: {Name: "ShutterCount"},
	0x00A8: {Name: "FlashInfo"},
	0x00A9: {Name: "ImageOptimization"},
	0x00AA: {Name: "Saturation"},
	0x00AB: {Name: "VariProgram"},
	0x00AC: {Name: "ImageStabilization"},
	0x00AD: {Name: "AFResponse"},
	0x00B0: {Name: "MultiExposure"},
	0x00B1: {Name: "HighISONoiseReduction", Values: Values{
		0: "Off", 1: "Minimal", 2: "Low", 3: "Medium Low", 4: "Normal", 5: "Medium High", 6: "High",
	}},
	0x00B3: {Name: "ToningEffect"},
	0x00B6: {Name: "PowerUpTime"},
	0x00B7: {Name: "AFInfo2"},
	0x00B8: {Name: "FileInfo"},
	0x00B9: {Name: "AFTune"},
	0x00BB: {Name: "RetouchInfo"},
	0x00BD: {Name: "PictureControlData2"},
	0x00BF: {Name: "SilentPhotography", Values: Values{0: "Off", 1: "On"}},
	0x00C3: {Name: "BarometerInfo"},
	0x0E00: {Name: "PrintIM"},
	0x0E01: {Name: "NikonCaptureData"},
	0x0E09: {Name: "NikonCaptureVersion"},
	0x0E0E: {Name: "NikonCaptureOffsets"},
	0x0E10: {Name: "NikonScanIFD"},
	0x0E13: {Name: "NikonCaptureEditVersions"},
	0x0E1D: {Name: "NikonICCProfile"},
	0x0E1E: {Name: "NikonCaptureOutput"},
	0x0E22: {Name: "NEFBitDepth"},
}

// nikonISOInfo is indexed in bytes. The ISO bytes are encoded as
// 100*2^(n/12-5); the decoder converts them.
var nikonISOInfo = BinaryTable{
	Name:   "ISOInfo",
	Format: fByte,
	Fields: map[uint16]Field{
		0:  {Name: "ISO"},
		4:  {Name: "ISOExpansion", Format: fShort, Values: nikonISOExpansion},
		6:  {Name: "ISO2"},
		10: {Name: "ISOExpansion2", Format: fShort, Values: nikonISOExpansion},
	},
}
