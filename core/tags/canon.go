package tags

var canonLensTypes = Values{
	-1:  "n/a",
	1:   "Canon EF 50mm f/1.8",
	2:   "Canon EF 28mm f/2.8 or Sigma Lens",
	3:   "Canon EF 135mm f/2.8 Soft",
	4:   "Canon EF 35-105mm f/3.5-4.5 or Sigma Lens",
	5:   "Canon EF 35-70mm f/3.5-4.5",
	6:   "Canon EF 28-70mm f/3.5-4.5 or Sigma or Tokina Lens",
	7:   "Canon EF 100-300mm f/5.6L",
	10:  "Canon EF 50mm f/2.5 Macro or Sigma Lens",
	11:  "Canon EF 35mm f/2",
	13:  "Canon EF 15mm f/2.8 Fisheye",
	124: "Canon MP-E 65mm f/2.8 1-5x Macro Photo",
	125: "Canon TS-E 24mm f/3.5L",
	126: "Canon TS-E 45mm f/2.8",
	129: "Canon EF 300mm f/2.8L USM",
	130: "Canon EF 50mm f/1.0L USM",
	132: "Canon EF 1200mm f/5.6L USM",
	134: "Canon EF 600mm f/4L IS USM",
	135: "Canon EF 200mm f/1.8L USM",
	137: "Canon EF 85mm f/1.2L USM or Sigma or Tamron Lens",
	143: "Canon EF 500mm f/4L IS USM or Sigma Lens",
	149: "Canon EF 100mm f/2 USM",
	155: "Canon EF 85mm f/1.8 USM or Sigma Lens",
	160: "Canon EF 20-35mm f/3.5-4.5 USM or Tamron or Tokina Lens",
	173: "Canon EF 180mm Macro f/3.5L USM or Sigma Lens",
	180: "Canon EF 35mm f/1.4L USM or other Lens",
	197: "Canon EF 75-300mm f/4-5.6 IS USM or Sigma Lens",
	224: "Canon EF 70-200mm f/2.8L IS USM or other Lens",
	247: "Canon EF 14mm f/2.8L II USM or Tamron Lens",
	254: "Canon EF 100mm f/2.8L Macro IS USM or Tamron Lens",
	4142: "Canon EF-S 18-135mm f/3.5-5.6 IS STM",
	4154: "Canon EF-S 24mm f/2.8 STM",
	4156: "Canon EF 50mm f/1.8 STM",
	61182: "Canon RF 50mm F1.2L USM or other Canon RF Lens",
}

var canonMain = Table{
	0x0001: {Name: "CanonCameraSettings"},
	0x0002: {Name: "CanonFocalLength"},
	0x0003: {Name: "CanonFlashInfo"},
	0x0004: {Name: "CanonShotInfo"},
	0x0005: {Name: "CanonPanorama"},
	0x0006: {Name: "CanonImageType"},
	0x0007: {Name: "CanonFirmwareVersion"},
	0x0008: {Name: "FileNumber"},
	0x0009: {Name: "OwnerName"},
	0x000C: {Name: "SerialNumber"},
	0x000D: {Name: "CanonCameraInfo"},
	0x000E: {Name: "CanonFileLength"},
	0x000F: {Name: "CustomFunctions"},
	0x0010: {Name: "CanonModelID", Values: Values{
		0x1010000: "PowerShot A30",
		0x80000001: "EOS-1D",
		0x80000167: "EOS-1DS",
		0x80000168: "EOS 10D",
		0x80000170: "EOS Digital Rebel / 300D / Kiss Digital",
		0x80000174: "EOS-1D Mark II",
		0x80000189: "EOS Digital Rebel XT / 350D / Kiss Digital N",
		0x80000213: "EOS 5D",
		0x80000218: "EOS 5D Mark II",
		0x80000250: "EOS 7D",
		0x80000285: "EOS 5D Mark III",
		0x80000349: "EOS 5D Mark IV",
		0x80000424: "EOS R",
		0x80000450: "EOS R5",
	}},
	0x0012: {Name: "CanonAFInfo"},
	0x0013: {Name: "ThumbnailImageValidArea"},
	0x0015: {Name: "SerialNumberFormat", Values: Values{0x90000000: "Format 1", 0xa0000000: "Format 2"}},
	0x001A: {Name: "SuperMacro", Values: Values{0: "Off", 1: "On (1)", 2: "On (2)"}},
	0x001C: {Name: "DateStampMode", Values: Values{0: "Off", 1: "Date", 2: "Date & Time"}},
	0x001D: {Name: "MyColors"},
	0x001E: {Name: "FirmwareRevision"},
	0x0023: {Name: "Categories"},
	0x0024: {Name: "FaceDetect1"},
	0x0025: {Name: "FaceDetect2"},
	0x0026: {Name: "CanonAFInfo2"},
	0x0027: {Name: "ContrastInfo"},
	0x0028: {Name: "ImageUniqueID"},
	0x0029: {Name: "WBInfo"},
	0x002F: {Name: "FaceDetect3"},
	0x0035: {Name: "TimeInfo"},
	0x0038: {Name: "BatteryType"},
	0x003C: {Name: "AFInfo3"},
	0x0081: {Name: "RawDataOffset"},
	0x0083: {Name: "OriginalDecisionDataOffset"},
	0x0093: {Name: "CanonFileInfo"},
	0x0095: {Name: "LensModel"},
	0x0096: {Name: "SerialInfo"},
	0x0097: {Name: "DustRemovalData"},
	0x0098: {Name: "CropInfo"},
	0x0099: {Name: "CustomFunctions2"},
	0x009A: {Name: "AspectInfo"},
	0x00A0: {Name: "ProcessingInfo"},
	0x00AA: {Name: "MeasuredColor"},
	0x00AE: {Name: "ColorTemperature"},
	0x00B0: {Name: "CanonFlags"},
	0x00B4: {Name: "ColorSpace", Values: Values{1: "sRGB", 2: "Adobe RGB"}},
	0x00B6: {Name: "PreviewImageInfo"},
	0x00D0: {Name: "VRDOffset"},
	0x00E0: {Name: "SensorInfo"},
	0x4001: {Name: "ColorData"},
	0x4002: {Name: "CRWParam"},
	0x4003: {Name: "ColorInfo"},
	0x4005: {Name: "Flavor"},
	0x4008: {Name: "PictureStyleUserDef"},
	0x4009: {Name: "PictureStylePC"},
	0x4010: {Name: "CustomPictureStyleFileName"},
	0x4013: {Name: "AFMicroAdj"},
	0x4015: {Name: "VignettingCorr"},
	0x4016: {Name: "VignettingCorr2"},
	0x4018: {Name: "LightingOpt"},
	0x4019: {Name: "LensInfo"},
	0x4020: {Name: "AmbienceInfo"},
	0x4021: {Name: "MultiExp"},
	0x4024: {Name: "FilterInfo"},
	0x4025: {Name: "HDRInfo"},
	0x4028: {Name: "AFConfig"},
}

var canonCameraSettings = BinaryTable{
	Name:   "CameraSettings",
	Format: fSShrt,
	Fields: map[uint16]Field{
		1: {Name: "MacroMode", Values: Values{1: "Macro", 2: "Normal"}},
		2: {Name: "SelfTimer"},
		3: {Name: "Quality", Values: Values{
			-1: "n/a", 1: "Economy", 2: "Normal", 3: "Fine", 4: "RAW", 5: "Superfine", 7: "CRAW",
			130: "Light (RAW)", 131: "Standard (RAW)",
		}},
		4: {Name: "CanonFlashMode", Values: Values{
			-1: "n/a", 0: "Off", 1: "Auto", 2: "On", 3: "Red-eye reduction", 4: "Slow-sync",
			5: "Red-eye reduction (Auto)", 6: "Red-eye reduction (On)", 16: "External flash",
		}},
		5: {Name: "ContinuousDrive", Values: Values{
			0: "Single", 1: "Continuous", 2: "Movie", 3: "Continuous, Speed Priority",
			4: "Continuous, Low", 5: "Continuous, High", 6: "Silent Single",
			8: "Continuous, High+", 9: "Single, Silent", 10: "Continuous, Silent",
		}},
		7: {Name: "FocusMode", Values: Values{
			0: "One-shot AF", 1: "AI Servo AF", 2: "AI Focus AF", 3: "Manual Focus (3)",
			4: "Single", 5: "Continuous", 6: "Manual Focus (6)", 16: "Pan Focus",
			256: "One-shot AF (Live View)", 257: "AI Servo AF (Live View)",
			258: "AI Focus AF (Live View)", 512: "Movie Snap Focus", 519: "Movie Servo AF",
		}},
		9: {Name: "RecordMode", Values: Values{
			1: "JPEG", 2: "CRW+THM", 3: "AVI+THM", 4: "TIF", 5: "TIF+JPEG", 6: "CR2",
			7: "CR2+JPEG", 9: "MOV", 10: "MP4", 11: "CRM", 12: "CR3", 13: "CR3+JPEG",
			14: "HIF", 15: "CR3+HIF",
		}},
		10: {Name: "CanonImageSize", Values: Values{
			-1: "n/a", 0: "Large", 1: "Medium", 2: "Small", 5: "Medium 1", 6: "Medium 2",
			7: "Medium 3", 8: "Postcard", 9: "Widescreen", 10: "Medium Widescreen",
			14: "Small 1", 15: "Small 2", 16: "Small 3",
		}},
		11: {Name: "EasyMode", Values: Values{
			0: "Full auto", 1: "Manual", 2: "Landscape", 3: "Fast shutter", 4: "Slow shutter",
			5: "Night", 6: "Gray Scale", 7: "Sepia", 8: "Portrait", 9: "Sports", 10: "Macro",
			11: "Black & White", 12: "Pan focus", 13: "Vivid", 14: "Neutral", 15: "Flash Off",
			16: "Long Shutter", 17: "Super Macro", 18: "Foliage", 19: "Indoor", 20: "Fireworks",
			21: "Beach", 22: "Underwater",
		}},
		12: {Name: "DigitalZoom", Values: Values{0: "None", 1: "2x", 2: "4x", 3: "Other"}},
		13: {Name: "Contrast", Values: Values{0: "Normal", 0x7fff: "n/a"}},
		14: {Name: "Saturation", Values: Values{0: "Normal", 0x7fff: "n/a"}},
		15: {Name: "Sharpness"},
		16: {Name: "CameraISO"},
		17: {Name: "MeteringMode", Values: Values{
			0: "Default", 1: "Spot", 2: "Average", 3: "Evaluative", 4: "Partial", 5: "Center-weighted average",
		}},
		18: {Name: "FocusRange", Values: Values{
			0: "Manual", 1: "Auto", 2: "Not Known", 3: "Macro", 4: "Very Close", 5: "Close",
			6: "Middle Range", 7: "Far Range", 8: "Pan Focus", 9: "Super Macro", 10: "Infinity",
		}},
		19: {Name: "AFPoint", Values: Values{
			0x2005: "Manual AF point selection", 0x3000: "None (MF)", 0x3001: "Auto AF point selection",
			0x3002: "Right", 0x3003: "Center", 0x3004: "Left", 0x4001: "Auto AF point selection",
			0x4006: "Face Detect",
		}},
		20: {Name: "CanonExposureMode", Values: Values{
			0: "Easy", 1: "Program AE", 2: "Shutter speed priority AE", 3: "Aperture-priority AE",
			4: "Manual", 5: "Depth-of-field AE", 6: "M-Dep", 7: "Bulb", 8: "Flexible-priority AE",
		}},
		22: {Name: "LensType", Format: fShort, Values: canonLensTypes},
		23: {Name: "MaxFocalLength", Format: fShort},
		24: {Name: "MinFocalLength", Format: fShort},
		25: {Name: "FocalUnits"},
		26: {Name: "MaxAperture"},
		27: {Name: "MinAperture"},
		28: {Name: "FlashActivity"},
		29: {Name: "FlashBits"},
		32: {Name: "FocusContinuous", Values: Values{0: "Single", 1: "Continuous", 8: "Manual"}},
		33: {Name: "AESetting", Values: Values{
			0: "Normal AE", 1: "Exposure Compensation", 2: "AE Lock",
			3: "AE Lock + Exposure Comp.", 4: "No AE",
		}},
		34: {Name: "ImageStabilization", Values: Values{
			0: "Off", 1: "On", 2: "Shoot Only", 3: "Panning", 4: "Dynamic",
			256: "Off (2)", 257: "On (2)", 258: "Shoot Only (2)", 259: "Panning (2)", 260: "Dynamic (2)",
		}},
		35: {Name: "DisplayAperture"},
		36: {Name: "ZoomSourceWidth"},
		37: {Name: "ZoomTargetWidth"},
		39: {Name: "SpotMeteringMode", Values: Values{0: "Center", 1: "AF Point"}},
		40: {Name: "PhotoEffect", Values: Values{
			0: "Off", 1: "Vivid", 2: "Neutral", 3: "Smooth", 4: "Sepia", 5: "B&W",
			6: "Custom", 100: "My Color Data",
		}},
		41: {Name: "ManualFlashOutput", Values: Values{
			0: "n/a", 0x500: "Full", 0x502: "Medium", 0x504: "Low", 0x7fff: "n/a",
		}},
		42: {Name: "ColorTone", Values: Values{0: "Normal"}},
		46: {Name: "SRAWQuality", Values: Values{0: "n/a", 1: "sRAW1 (mRAW)", 2: "sRAW2 (sRAW)"}},
	},
}

var canonFocalLength = BinaryTable{
	Name:   "FocalLength",
	Format: fShort,
	Fields: map[uint16]Field{
		0: {Name: "FocalType", Values: Values{1: "Fixed", 2: "Zoom"}},
		1: {Name: "FocalLength"},
		2: {Name: "FocalPlaneXSize"},
		3: {Name: "FocalPlaneYSize"},
	},
}

var canonShotInfo = BinaryTable{
	Name:   "ShotInfo",
	Format: fSShrt,
	Fields: map[uint16]Field{
		1:  {Name: "AutoISO"},
		2:  {Name: "BaseISO"},
		3:  {Name: "MeasuredEV"},
		4:  {Name: "TargetAperture"},
		5:  {Name: "TargetExposureTime"},
		6:  {Name: "ExposureCompensation"},
		7:  {Name: "WhiteBalance", Values: Values{
			0: "Auto", 1: "Daylight", 2: "Cloudy", 3: "Tungsten", 4: "Fluorescent", 5: "Flash",
			6: "Custom", 7: "Black & White", 8: "Shade", 9: "Manual Temperature (Kelvin)",
			14: "Daylight Fluorescent", 17: "Under Water",
		}},
		8:  {Name: "SlowShutter", Values: Values{-1: "n/a", 0: "Off", 1: "Night Scene", 2: "On", 3: "None"}},
		9:  {Name: "SequenceNumber"},
		10: {Name: "OpticalZoomCode"},
		12: {Name: "CameraTemperature"},
		13: {Name: "FlashGuideNumber"},
		14: {Name: "AFPointsInFocus"},
		15: {Name: "FlashExposureComp"},
		16: {Name: "AutoExposureBracketing", Values: Values{-1: "On", 0: "Off", 1: "On (shot 1)", 2: "On (shot 2)", 3: "On (shot 3)"}},
		17: {Name: "AEBBracketValue"},
		18: {Name: "ControlMode", Values: Values{0: "n/a", 1: "Camera Local Control", 3: "Computer Remote Control"}},
		19: {Name: "FocusDistanceUpper", Format: fShort},
		20: {Name: "FocusDistanceLower", Format: fShort},
		21: {Name: "FNumber"},
		22: {Name: "ExposureTime"},
		23: {Name: "MeasuredEV2"},
		24: {Name: "BulbDuration"},
		26: {Name: "CameraType", Values: Values{0: "n/a", 248: "EOS High-end", 250: "Compact", 252: "EOS Mid-range", 255: "DV Camera"}},
		27: {Name: "AutoRotate", Values: Values{-1: "n/a", 0: "None", 1: "Rotate 90 CW", 2: "Rotate 180", 3: "Rotate 270 CW"}},
		28: {Name: "NDFilter", Values: Values{-1: "n/a", 0: "Off", 1: "On"}},
		29: {Name: "SelfTimer2"},
		33: {Name: "FlashOutput"},
	},
}

var canonAFInfo = BinaryTable{
	Name:   "AFInfo",
	Format: fShort,
	Fields: map[uint16]Field{
		0: {Name: "NumAFPoints"},
		1: {Name: "ValidAFPoints"},
		2: {Name: "CanonImageWidth"},
		3: {Name: "CanonImageHeight"},
		4: {Name: "AFImageWidth"},
		5: {Name: "AFImageHeight"},
		6: {Name: "AFAreaWidth"},
		7: {Name: "AFAreaHeight"},
	},
}
