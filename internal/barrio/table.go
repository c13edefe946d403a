package barrio

// 文档注释：barrio 关键词表（有序）
// 背景：自由文本地址中常见的 barrio 名、地标与主干道；表内顺序即歧义时的裁决顺序，靠前者优先。
// 约束：关键词按小写子串匹配，不做去重音；改动顺序等同于改变分类结果，需要同步更新测试。
// NOTE: 街道名与 barrio 同名时（Av. Belgrano、Parque Avellaneda、Calle Florida）需把更具体的关键词放在更靠前的条目。
var table = []entry{
	{"Palermo", []string{"palermo", "av. santa fe", "thames", "plaza italia", "las cañitas", "plaza serrano", "godoy cruz", "scalabrini ortiz"}},
	{"Recoleta", []string{"recoleta", "barrio norte", "av. callao", "plaza francia", "av. las heras"}},
	{"Retiro", []string{"retiro", "plaza san martín", "plaza san martin"}},
	{"San Nicolás", []string{"san nicolás", "san nicolas", "microcentro", "tribunales", "calle florida", "av. corrientes 1", "obelisco"}},
	{"Monserrat", []string{"monserrat", "montserrat", "av. belgrano", "av. de mayo", "plaza de mayo"}},
	{"Puerto Madero", []string{"puerto madero", "juana manso", "alicia moreau de justo"}},
	{"San Telmo", []string{"san telmo", "plaza dorrego", "defensa"}},
	{"La Boca", []string{"la boca", "caminito", "almirante brown 1"}},
	{"Barracas", []string{"barracas", "av. montes de oca"}},
	{"Constitución", []string{"constitución", "constitucion"}},
	{"San Cristóbal", []string{"san cristóbal", "san cristobal", "av. san juan", "av. jujuy"}},
	{"Balvanera", []string{"balvanera", "plaza once", "barrio once", "abasto", "av. pueyrredón", "av. pueyrredon"}},
	{"Almagro", []string{"almagro", "medrano"}},
	{"Boedo", []string{"boedo"}},
	{"Caballito", []string{"caballito", "primera junta", "parque rivadavia", "parque centenario"}},
	{"Parque Patricios", []string{"parque patricios", "av. caseros"}},
	{"Nueva Pompeya", []string{"nueva pompeya", "pompeya"}},
	{"Parque Chacabuco", []string{"parque chacabuco"}},
	{"Parque Avellaneda", []string{"parque avellaneda"}},
	{"Villa Crespo", []string{"villa crespo", "av. warnes"}},
	{"Chacarita", []string{"chacarita", "av. dorrego"}},
	{"Colegiales", []string{"colegiales"}},
	{"Belgrano", []string{"belgrano", "av. cabildo", "barrancas de belgrano", "av. juramento"}},
	{"Núñez", []string{"núñez", "nuñez", "nunez", "av. del libertador 7", "ciudad universitaria"}},
	{"Coghlan", []string{"coghlan"}},
	{"Saavedra", []string{"saavedra", "parque sarmiento"}},
	{"Villa Urquiza", []string{"villa urquiza", "av. triunvirato"}},
	{"Villa Pueyrredón", []string{"villa pueyrredón", "villa pueyrredon"}},
	{"Villa Ortúzar", []string{"villa ortúzar", "villa ortuzar"}},
	{"Parque Chas", []string{"parque chas"}},
	{"Agronomía", []string{"agronomía", "agronomia"}},
	{"La Paternal", []string{"paternal"}},
	{"Villa General Mitre", []string{"villa general mitre", "villa gral. mitre"}},
	{"Villa del Parque", []string{"villa del parque"}},
	{"Villa Devoto", []string{"devoto"}},
	{"Villa Santa Rita", []string{"villa santa rita"}},
	{"Villa Real", []string{"villa real"}},
	{"Monte Castro", []string{"monte castro"}},
	{"Versalles", []string{"versalles"}},
	{"Villa Luro", []string{"villa luro"}},
	{"Vélez Sarsfield", []string{"vélez sarsfield", "velez sarsfield"}},
	{"Floresta", []string{"floresta"}},
	{"Flores", []string{"flores", "av. nazca"}},
	{"Liniers", []string{"liniers"}},
	{"Mataderos", []string{"mataderos"}},
	{"Villa Lugano", []string{"lugano"}},
	{"Villa Soldati", []string{"soldati"}},
	{"Villa Riachuelo", []string{"villa riachuelo"}},
	// Gran Buenos Aires
	{"Vicente López", []string{"vicente lópez", "vicente lopez", "olivos", "munro", "florida oeste"}},
	{"San Isidro", []string{"san isidro", "martínez", "martinez", "béccar", "beccar", "acassuso"}},
	{"San Fernando", []string{"san fernando", "victoria, buenos aires"}},
	{"Tigre", []string{"tigre", "nordelta", "don torcuato"}},
	{"General San Martín", []string{"general san martín", "general san martin", "gral. san martín", "gral. san martin", "villa ballester"}},
	{"Tres de Febrero", []string{"tres de febrero", "caseros", "ciudadela"}},
	{"Hurlingham", []string{"hurlingham"}},
	{"Morón", []string{"morón", "moron", "haedo", "castelar"}},
	{"Ituzaingó", []string{"ituzaingó", "ituzaingo"}},
	{"La Matanza", []string{"la matanza", "ramos mejía", "ramos mejia", "san justo"}},
	{"Avellaneda", []string{"avellaneda", "sarandí", "sarandi", "wilde"}},
	{"Lanús", []string{"lanús", "lanus"}},
	{"Lomas de Zamora", []string{"lomas de zamora", "banfield", "temperley"}},
	{"Almirante Brown", []string{"almirante brown", "adrogué", "adrogue"}},
	{"Esteban Echeverría", []string{"esteban echeverría", "esteban echeverria", "monte grande"}},
	{"Quilmes", []string{"quilmes", "bernal"}},
	{"Berazategui", []string{"berazategui"}},
	{"Florencio Varela", []string{"florencio varela"}},
	{"La Plata", []string{"la plata", "city bell"}},
	{"Pilar", []string{"pilar"}},
	{"Escobar", []string{"escobar"}},
}

// 城市级司法辖区标记：无 barrio 命中时归入该辖区的“其他”桶
var jurisdictions = []jurisdiction{
	{"Capital Federal (Otros)", []string{"ciudad autónoma de buenos aires", "ciudad autonoma de buenos aires", "ciudad de buenos aires", "capital federal", "c.a.b.a", "caba"}},
	{"Gran Buenos Aires (Otros)", []string{"provincia de buenos aires", "pcia. de buenos aires", "pcia de buenos aires", "prov. de buenos aires", "gran buenos aires", "conurbano", "gba"}},
}

var provinceNames = []string{
	"buenos aires",
	"catamarca",
	"chaco",
	"chubut",
	"córdoba",
	"corrientes",
	"entre ríos",
	"formosa",
	"jujuy",
	"la pampa",
	"la rioja",
	"mendoza",
	"misiones",
	"neuquén",
	"río negro",
	"salta",
	"san juan",
	"san luis",
	"santa cruz",
	"santa fe",
	"santiago del estero",
	"tierra del fuego",
	"tucumán",
}
