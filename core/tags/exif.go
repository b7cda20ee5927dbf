package tags

import "github.com/ankit-chaubey/metasurgery/core/ifd"

const (
	fByte  = ifd.FormatUInt8
	fASCII = ifd.FormatString
	fShort = ifd.FormatUInt16
	fLong  = ifd.FormatUInt32
	fRat   = ifd.FormatURational
	fSRat  = ifd.FormatSRational
	fUndef = ifd.FormatUndefined
	fSShrt = ifd.FormatInt16
)

var orientationValues = Values{
	1: "Horizontal (normal)",
	2: "Mirror horizontal",
	3: "Rotate 180",
	4: "Mirror vertical",
	5: "Mirror horizontal and rotate 270 CW",
	6: "Rotate 90 CW",
	7: "Mirror horizontal and rotate 90 CW",
	8: "Rotate 270 CW",
}

var resolutionUnitValues = Values{1: "None", 2: "inches", 3: "cm"}

var compressionValues = Values{
	1:     "Uncompressed",
	2:     "CCITT 1D",
	3:     "T4/Group 3 Fax",
	4:     "T6/Group 4 Fax",
	5:     "LZW",
	6:     "JPEG (old-style)",
	7:     "JPEG",
	8:     "Adobe Deflate",
	9:     "JBIG B&W",
	10:    "JBIG Color",
	99:    "JPEG",
	262:   "Kodak 262",
	32766: "Next",
	32767: "Sony ARW Compressed",
	32769: "Packed RAW",
	32770: "Samsung SRW Compressed",
	32771: "CCIRLEW",
	32772: "Samsung SRW Compressed 2",
	32773: "PackBits",
	32809: "Thunderscan",
	32867: "Kodak KDC Compressed",
	32946: "Deflate",
	32947: "DCS",
	34661: "JBIG",
	34676: "SGILog",
	34677: "SGILog24",
	34712: "JPEG 2000",
	34713: "Nikon NEF Compressed",
	34715: "JBIG2 TIFF FX",
	34892: "Lossy JPEG",
	34925: "LZMA2",
	34926: "Zstd",
	34927: "WebP",
	34933: "PNG",
	34934: "JPEG XR",
	65000: "Kodak DCR Compressed",
	65535: "Pentax PEF Compressed",
}

var photometricValues = Values{
	0:     "WhiteIsZero",
	1:     "BlackIsZero",
	2:     "RGB",
	3:     "RGB Palette",
	4:     "Transparency Mask",
	5:     "CMYK",
	6:     "YCbCr",
	8:     "CIELab",
	9:     "ICCLab",
	10:    "ITULab",
	32803: "Color Filter Array",
	34892: "Linear Raw",
}

var ifd0Tags = Table{
	0x000B: {Name: "ProcessingSoftware", Format: fASCII},
	0x00FE: {Name: "SubfileType", Format: fLong, Count: 1, Values: Values{
		0: "Full-resolution image", 1: "Reduced-resolution image", 2: "Single page of multi-page image",
	}},
	0x00FF: {Name: "OldSubfileType", Format: fShort, Count: 1},
	0x0100: {Name: "ImageWidth", Format: fLong, Count: 1},
	0x0101: {Name: "ImageHeight", Format: fLong, Count: 1},
	0x0102: {Name: "BitsPerSample", Format: fShort},
	0x0103: {Name: "Compression", Format: fShort, Count: 1, Values: compressionValues},
	0x0106: {Name: "PhotometricInterpretation", Format: fShort, Count: 1, Values: photometricValues},
	0x0107: {Name: "Thresholding", Format: fShort, Count: 1},
	0x010A: {Name: "FillOrder", Format: fShort, Count: 1, Values: Values{1: "Normal", 2: "Reversed"}},
	0x010D: {Name: "DocumentName", Format: fASCII},
	0x010E: {Name: "ImageDescription", Format: fASCII},
	0x010F: {Name: "Make", Format: fASCII},
	0x0110: {Name: "Model", Format: fASCII},
	0x0111: {Name: "StripOffsets", Structural: true},
	0x0112: {Name: "Orientation", Format: fShort, Count: 1, Values: orientationValues},
	0x0115: {Name: "SamplesPerPixel", Format: fShort, Count: 1},
	0x0116: {Name: "RowsPerStrip", Format: fLong, Count: 1},
	0x0117: {Name: "StripByteCounts", Structural: true},
	0x011A: {Name: "XResolution", Format: fRat, Count: 1},
	0x011B: {Name: "YResolution", Format: fRat, Count: 1},
	0x011C: {Name: "PlanarConfiguration", Format: fShort, Count: 1, Values: Values{1: "Chunky", 2: "Planar"}},
	0x011D: {Name: "PageName", Format: fASCII},
	0x0128: {Name: "ResolutionUnit", Format: fShort, Count: 1, Values: resolutionUnitValues},
	0x0129: {Name: "PageNumber", Format: fShort, Count: 2},
	0x012D: {Name: "TransferFunction", Format: fShort},
	0x0131: {Name: "Software", Format: fASCII},
	0x0132: {Name: "ModifyDate", Format: fASCII},
	0x013B: {Name: "Artist", Format: fASCII},
	0x013C: {Name: "HostComputer", Format: fASCII},
	0x013D: {Name: "Predictor", Format: fShort, Count: 1, Values: Values{
		1: "None", 2: "Horizontal differencing", 3: "Floating point",
	}},
	0x013E: {Name: "WhitePoint", Format: fRat, Count: 2},
	0x013F: {Name: "PrimaryChromaticities", Format: fRat, Count: 6},
	0x0140: {Name: "ColorMap", Format: fShort},
	0x0142: {Name: "TileWidth", Format: fLong, Count: 1},
	0x0143: {Name: "TileLength", Format: fLong, Count: 1},
	0x0144: {Name: "TileOffsets", Structural: true},
	0x0145: {Name: "TileByteCounts", Structural: true},
	0x014A: {Name: "SubIFDs", Structural: true},
	0x0152: {Name: "ExtraSamples", Format: fShort},
	0x0153: {Name: "SampleFormat", Format: fShort},
	0x0201: {Name: "ThumbnailOffset", Structural: true},
	0x0202: {Name: "ThumbnailLength", Structural: true},
	0x0211: {Name: "YCbCrCoefficients", Format: fRat, Count: 3},
	0x0212: {Name: "YCbCrSubSampling", Format: fShort, Count: 2},
	0x0213: {Name: "YCbCrPositioning", Format: fShort, Count: 1, Values: Values{1: "Centered", 2: "Co-sited"}},
	0x0214: {Name: "ReferenceBlackWhite", Format: fRat, Count: 6},
	0x02BC: {Name: "ApplicationNotes", Structural: true},
	0x4746: {Name: "Rating", Format: fShort, Count: 1},
	0x4749: {Name: "RatingPercent", Format: fShort, Count: 1},
	0x8298: {Name: "Copyright", Format: fASCII},
	0x83BB: {Name: "IPTC-NAA", Structural: true},
	0x8649: {Name: "PhotoshopSettings", Structural: true},
	0x8769: {Name: "ExifOffset", Structural: true},
	0x8773: {Name: "ICC_Profile", Structural: true},
	0x8825: {Name: "GPSInfo", Structural: true},
	0x9C9B: {Name: "XPTitle", Format: fByte},
	0x9C9C: {Name: "XPComment", Format: fByte},
	0x9C9D: {Name: "XPAuthor", Format: fByte},
	0x9C9E: {Name: "XPKeywords", Format: fByte},
	0x9C9F: {Name: "XPSubject", Format: fByte},
	0xC4A5: {Name: "PrintIM", Format: fUndef},
	0xC612: {Name: "DNGVersion", Format: fByte, Count: 4},
	0xC613: {Name: "DNGBackwardVersion", Format: fByte, Count: 4},
	0xC614: {Name: "UniqueCameraModel", Format: fASCII},
	0xC615: {Name: "LocalizedCameraModel", Format: fASCII},
	0xC62F: {Name: "CameraSerialNumber", Format: fASCII},
	0xC630: {Name: "DNGLensInfo", Format: fRat, Count: 4},
	0xC634: {Name: "DNGPrivateData", Structural: true},
	0xC640: {Name: "CR2Slice", Structural: true},
	0xC68B: {Name: "OriginalRawFileName", Format: fASCII},
}

var exposureProgramValues = Values{
	0: "Not Defined",
	1: "Manual",
	2: "Program AE",
	3: "Aperture-priority AE",
	4: "Shutter speed priority AE",
	5: "Creative (Slow speed)",
	6: "Action (High speed)",
	7: "Portrait",
	8: "Landscape",
	9: "Bulb",
}

var meteringModeValues = Values{
	0:   "Unknown",
	1:   "Average",
	2:   "Center-weighted average",
	3:   "Spot",
	4:   "Multi-spot",
	5:   "Multi-segment",
	6:   "Partial",
	255: "Other",
}

var lightSourceValues = Values{
	0:   "Unknown",
	1:   "Daylight",
	2:   "Fluorescent",
	3:   "Tungsten (Incandescent)",
	4:   "Flash",
	9:   "Fine Weather",
	10:  "Cloudy",
	11:  "Shade",
	12:  "Daylight Fluorescent",
	13:  "Day White Fluorescent",
	14:  "Cool White Fluorescent",
	15:  "White Fluorescent",
	16:  "Warm White Fluorescent",
	17:  "Standard Light A",
	18:  "Standard Light B",
	19:  "Standard Light C",
	20:  "D55",
	21:  "D65",
	22:  "D75",
	23:  "D50",
	24:  "ISO Studio Tungsten",
	255: "Other",
}

var sensitivityTypeValues = Values{
	0: "Unknown",
	1: "Standard Output Sensitivity",
	2: "Recommended Exposure Index",
	3: "ISO Speed",
	4: "Standard Output Sensitivity and Recommended Exposure Index",
	5: "Standard Output Sensitivity and ISO Speed",
	6: "Recommended Exposure Index and ISO Speed",
	7: "Standard Output Sensitivity, Recommended Exposure Index and ISO Speed",
}

var normalLowHigh = Values{0: "Normal", 1: "Low", 2: "High"}

var exifTags = Table{
	0x829A: {Name: "ExposureTime", Format: fRat, Count: 1},
	0x829D: {Name: "FNumber", Format: fRat, Count: 1},
	0x8822: {Name: "ExposureProgram", Format: fShort, Count: 1, Values: exposureProgramValues},
	0x8824: {Name: "SpectralSensitivity", Format: fASCII},
	0x8827: {Name: "ISO", Format: fShort},
	0x8828: {Name: "Opto-ElectricConvFactor", Format: fUndef},
	0x8830: {Name: "SensitivityType", Format: fShort, Count: 1, Values: sensitivityTypeValues},
	0x8831: {Name: "StandardOutputSensitivity", Format: fLong, Count: 1},
	0x8832: {Name: "RecommendedExposureIndex", Format: fLong, Count: 1},
	0x8833: {Name: "ISOSpeed", Format: fLong, Count: 1},
	0x9000: {Name: "ExifVersion", Format: fUndef, Count: 4},
	0x9003: {Name: "DateTimeOriginal", Format: fASCII},
	0x9004: {Name: "CreateDate", Format: fASCII},
	0x9010: {Name: "OffsetTime", Format: fASCII},
	0x9011: {Name: "OffsetTimeOriginal", Format: fASCII},
	0x9012: {Name: "OffsetTimeDigitized", Format: fASCII},
	0x9101: {Name: "ComponentsConfiguration", Format: fUndef, Count: 4},
	0x9102: {Name: "CompressedBitsPerPixel", Format: fRat, Count: 1},
	0x9201: {Name: "ShutterSpeedValue", Format: fSRat, Count: 1},
	0x9202: {Name: "ApertureValue", Format: fRat, Count: 1},
	0x9203: {Name: "BrightnessValue", Format: fSRat, Count: 1},
	0x9204: {Name: "ExposureCompensation", Format: fSRat, Count: 1},
	0x9205: {Name: "MaxApertureValue", Format: fRat, Count: 1},
	0x9206: {Name: "SubjectDistance", Format: fRat, Count: 1},
	0x9207: {Name: "MeteringMode", Format: fShort, Count: 1, Values: meteringModeValues},
	0x9208: {Name: "LightSource", Format: fShort, Count: 1, Values: lightSourceValues},
	0x9209: {Name: "Flash", Format: fShort, Count: 1},
	0x920A: {Name: "FocalLength", Format: fRat, Count: 1},
	0x9214: {Name: "SubjectArea", Format: fShort},
	0x927C: {Name: "MakerNote", Structural: true},
	0x9286: {Name: "UserComment", Format: fUndef},
	0x9290: {Name: "SubSecTime", Format: fASCII},
	0x9291: {Name: "SubSecTimeOriginal", Format: fASCII},
	0x9292: {Name: "SubSecTimeDigitized", Format: fASCII},
	0x9400: {Name: "AmbientTemperature", Format: fSRat, Count: 1},
	0x9401: {Name: "Humidity", Format: fRat, Count: 1},
	0x9402: {Name: "Pressure", Format: fRat, Count: 1},
	0xA000: {Name: "FlashpixVersion", Format: fUndef, Count: 4},
	0xA001: {Name: "ColorSpace", Format: fShort, Count: 1, Values: Values{
		1: "sRGB", 2: "Adobe RGB", 0xFFFF: "Uncalibrated",
	}},
	0xA002: {Name: "ExifImageWidth", Format: fLong, Count: 1},
	0xA003: {Name: "ExifImageHeight", Format: fLong, Count: 1},
	0xA004: {Name: "RelatedSoundFile", Format: fASCII},
	0xA005: {Name: "InteropOffset", Structural: true},
	0xA20B: {Name: "FlashEnergy", Format: fRat, Count: 1},
	0xA20E: {Name: "FocalPlaneXResolution", Format: fRat, Count: 1},
	0xA20F: {Name: "FocalPlaneYResolution", Format: fRat, Count: 1},
	0xA210: {Name: "FocalPlaneResolutionUnit", Format: fShort, Count: 1, Values: Values{
		1: "None", 2: "inches", 3: "cm", 4: "mm", 5: "um",
	}},
	0xA214: {Name: "SubjectLocation", Format: fShort, Count: 2},
	0xA215: {Name: "ExposureIndex", Format: fRat, Count: 1},
	0xA217: {Name: "SensingMethod", Format: fShort, Count: 1, Values: Values{
		1: "Not defined",
		2: "One-chip color area",
		3: "Two-chip color area",
		4: "Three-chip color area",
		5: "Color sequential area",
		7: "Trilinear",
		8: "Color sequential linear",
	}},
	0xA300: {Name: "FileSource", Format: fUndef, Count: 1, Values: Values{
		1: "Film Scanner", 2: "Reflection Print Scanner", 3: "Digital Camera",
	}},
	0xA301: {Name: "SceneType", Format: fUndef, Count: 1, Values: Values{1: "Directly photographed"}},
	0xA302: {Name: "CFAPattern", Format: fUndef},
	0xA401: {Name: "CustomRendered", Format: fShort, Count: 1, Values: Values{
		0: "Normal",
		1: "Custom",
		2: "HDR (no original saved)",
		3: "HDR (original saved)",
		4: "Original (for HDR)",
		6: "Panorama",
		7: "Portrait HDR",
		8: "Portrait",
	}},
	0xA402: {Name: "ExposureMode", Format: fShort, Count: 1, Values: Values{0: "Auto", 1: "Manual", 2: "Auto bracket"}},
	0xA403: {Name: "WhiteBalance", Format: fShort, Count: 1, Values: Values{0: "Auto", 1: "Manual"}},
	0xA404: {Name: "DigitalZoomRatio", Format: fRat, Count: 1},
	0xA405: {Name: "FocalLengthIn35mmFormat", Format: fShort, Count: 1},
	0xA406: {Name: "SceneCaptureType", Format: fShort, Count: 1, Values: Values{
		0: "Standard", 1: "Landscape", 2: "Portrait", 3: "Night", 4: "Other",
	}},
	0xA407: {Name: "GainControl", Format: fShort, Count: 1, Values: Values{
		0: "None", 1: "Low gain up", 2: "High gain up", 3: "Low gain down", 4: "High gain down",
	}},
	0xA408: {Name: "Contrast", Format: fShort, Count: 1, Values: normalLowHigh},
	0xA409: {Name: "Saturation", Format: fShort, Count: 1, Values: normalLowHigh},
	0xA40A: {Name: "Sharpness", Format: fShort, Count: 1, Values: normalLowHigh},
	0xA40C: {Name: "SubjectDistanceRange", Format: fShort, Count: 1, Values: Values{
		0: "Unknown", 1: "Macro", 2: "Close", 3: "Distant",
	}},
	0xA420: {Name: "ImageUniqueID", Format: fASCII},
	0xA430: {Name: "OwnerName", Format: fASCII},
	0xA431: {Name: "SerialNumber", Format: fASCII},
	0xA432: {Name: "LensInfo", Format: fRat, Count: 4},
	0xA433: {Name: "LensMake", Format: fASCII},
	0xA434: {Name: "LensModel", Format: fASCII},
	0xA435: {Name: "LensSerialNumber", Format: fASCII},
	0xA460: {Name: "CompositeImage", Format: fShort, Count: 1, Values: Values{
		0: "Unknown", 1: "Not a Composite Image", 2: "General Composite Image", 3: "Composite Image Captured While Shooting",
	}},
	0xA500: {Name: "Gamma", Format: fRat, Count: 1},
}

var gpsTags = Table{
	0x0000: {Name: "GPSVersionID", Format: fByte, Count: 4},
	0x0001: {Name: "GPSLatitudeRef", Format: fASCII, Count: 2, Values: Values{'N': "North", 'S': "South"}},
	0x0002: {Name: "GPSLatitude", Format: fRat, Count: 3},
	0x0003: {Name: "GPSLongitudeRef", Format: fASCII, Count: 2, Values: Values{'E': "East", 'W': "West"}},
	0x0004: {Name: "GPSLongitude", Format: fRat, Count: 3},
	0x0005: {Name: "GPSAltitudeRef", Format: fByte, Count: 1, Values: Values{0: "Above Sea Level", 1: "Below Sea Level"}},
	0x0006: {Name: "GPSAltitude", Format: fRat, Count: 1},
	0x0007: {Name: "GPSTimeStamp", Format: fRat, Count: 3},
	0x0008: {Name: "GPSSatellites", Format: fASCII},
	0x0009: {Name: "GPSStatus", Format: fASCII, Count: 2, Values: Values{'A': "Measurement Active", 'V': "Measurement Void"}},
	0x000A: {Name: "GPSMeasureMode", Format: fASCII, Count: 2, Values: Values{
		2: "2-Dimensional Measurement", 3: "3-Dimensional Measurement",
	}},
	0x000B: {Name: "GPSDOP", Format: fRat, Count: 1},
	0x000C: {Name: "GPSSpeedRef", Format: fASCII, Count: 2, Values: Values{'K': "km/h", 'M': "mph", 'N': "knots"}},
	0x000D: {Name: "GPSSpeed", Format: fRat, Count: 1},
	0x000E: {Name: "GPSTrackRef", Format: fASCII, Count: 2, Values: Values{'M': "Magnetic North", 'T': "True North"}},
	0x000F: {Name: "GPSTrack", Format: fRat, Count: 1},
	0x0010: {Name: "GPSImgDirectionRef", Format: fASCII, Count: 2, Values: Values{'M': "Magnetic North", 'T': "True North"}},
	0x0011: {Name: "GPSImgDirection", Format: fRat, Count: 1},
	0x0012: {Name: "GPSMapDatum", Format: fASCII},
	0x0013: {Name: "GPSDestLatitudeRef", Format: fASCII, Count: 2, Values: Values{'N': "North", 'S': "South"}},
	0x0014: {Name: "GPSDestLatitude", Format: fRat, Count: 3},
	0x0015: {Name: "GPSDestLongitudeRef", Format: fASCII, Count: 2, Values: Values{'E': "East", 'W': "West"}},
	0x0016: {Name: "GPSDestLongitude", Format: fRat, Count: 3},
	0x0017: {Name: "GPSDestBearingRef", Format: fASCII, Count: 2, Values: Values{'M': "Magnetic North", 'T': "True North"}},
	0x0018: {Name: "GPSDestBearing", Format: fRat, Count: 1},
	0x0019: {Name: "GPSDestDistanceRef", Format: fASCII, Count: 2, Values: Values{'K': "Kilometers", 'M': "Miles", 'N': "Nautical Miles"}},
	0x001A: {Name: "GPSDestDistance", Format: fRat, Count: 1},
	0x001B: {Name: "GPSProcessingMethod", Format: fUndef},
	0x001C: {Name: "GPSAreaInformation", Format: fUndef},
	0x001D: {Name: "GPSDateStamp", Format: fASCII, Count: 11},
	0x001E: {Name: "GPSDifferential", Format: fShort, Count: 1, Values: Values{0: "No Correction", 1: "Differential Corrected"}},
	0x001F: {Name: "GPSHPositioningError", Format: fRat, Count: 1},
}

var interopTags = Table{
	0x0001: {Name: "InteropIndex", Format: fASCII},
	0x0002: {Name: "InteropVersion", Format: fUndef, Count: 4},
	0x1000: {Name: "RelatedImageFileFormat", Format: fASCII},
	0x1001: {Name: "RelatedImageWidth", Format: fShort, Count: 1},
	0x1002: {Name: "RelatedImageHeight", Format: fShort, Count: 1},
}
