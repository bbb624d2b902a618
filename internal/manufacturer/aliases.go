package manufacturer

// DefaultAliases maps canonical manufacturer names to the aliases commonly seen
// in BOMs and distributor exports. Canonical names are always aliases of
// themselves, so they do not need to be listed.
var DefaultAliases = map[string][]string{
	"Texas Instruments":         {"TI", "Texas Instr", "Burr-Brown", "National Semiconductor"},
	"Analog Devices":            {"ADI", "Analog Devices Inc", "Linear Technology", "LTC", "Linear Tech"},
	"Maxim Integrated":          {"Maxim", "Dallas Semiconductor", "Maxim Dallas"},
	"STMicroelectronics":        {"ST", "STM", "ST Micro", "ST Microelectronics"},
	"NXP Semiconductors":        {"NXP", "Freescale", "Philips Semiconductors"},
	"Microchip Technology":      {"Microchip", "MCHP", "Atmel", "Microsemi"},
	"Infineon Technologies":     {"Infineon", "IFX", "International Rectifier", "IR", "Cypress", "Cypress Semiconductor"},
	"onsemi":                    {"ON Semiconductor", "ON Semi", "ON", "Fairchild", "Fairchild Semiconductor"},
	"Renesas Electronics":       {"Renesas", "Intersil", "IDT", "Integrated Device Technology"},
	"Vishay":                    {"Vishay Intertechnology", "Vishay Semiconductors", "Vishay Siliconix", "Vishay Dale"},
	"Murata Manufacturing":      {"Murata", "Murata Electronics"},
	"TDK":                       {"TDK Corporation", "EPCOS", "TDK-Lambda"},
	"Nexperia":                  {"Nexperia USA"},
	"ROHM Semiconductor":        {"Rohm", "ROHM"},
	"Toshiba":                   {"Toshiba Electronic Devices", "Toshiba Semiconductor"},
	"Diodes Incorporated":       {"Diodes", "Diodes Inc", "Zetex"},
	"Bourns":                    {"Bourns Inc"},
	"Littelfuse":                {"Littelfuse Inc", "Littlefuse"},
	"Molex":                     {"Molex LLC"},
	"TE Connectivity":           {"TE", "Tyco Electronics", "AMP"},
	"Yageo":                     {"Yageo Corporation", "Phycomp"},
	"KEMET":                     {"Kemet Electronics"},
	"Panasonic":                 {"Panasonic Electronic Components", "Matsushita"},
	"Wurth Elektronik":          {"Würth Elektronik", "Wurth", "Würth", "WE"},
	"Samsung Electro-Mechanics": {"SEMCO", "Samsung EM"},
}
