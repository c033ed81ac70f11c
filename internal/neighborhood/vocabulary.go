package neighborhood

// Florianopolis is the ordered neighborhood vocabulary. The first block is
// the list the map was first built with; later entries extend coverage of
// the island and the continental side. Order breaks ties between matches of
// equal length.
var Florianopolis = []string{
	"Centro",
	"Trindade",
	"Ingleses do Rio Vermelho",
	"Canasvieiras",
	"Rio Tavares",
	"Estreito",
	"Agronômica",
	"Capoeiras",
	"Itacorubi",
	"Campeche",
	"Córrego Grande",
	"Jurerê",
	"Costeira do Pirajubaé",
	"Lagoa da Conceição",
	"Saco dos Limões",
	"Pantanal",
	"Santa Mônica",
	"João Paulo",
	"Abraão",
	"Carianos",
	"Monte Verde",
	"Coqueiros",
	"Barra da Lagoa",
	"Tapera",
	"Ribeirão da Ilha",
	"Sambaqui",
	"Armação",
	"Ratones",

	"Jurerê Internacional",
	"Ingleses",
	"Santinho",
	"Cachoeira do Bom Jesus",
	"Ponta das Canas",
	"Lagoinha do Norte",
	"Praia Brava",
	"Daniela",
	"Santo Antônio de Lisboa",
	"Cacupé",
	"Saco Grande",
	"Monte Cristo",
	"Balneário",
	"Jardim Atlântico",
	"Itaguaçu",
	"Bom Abrigo",
	"Coloninha",
	"Capivari",
	"Vargem Grande",
	"Vargem Pequena",
	"Vargem do Bom Jesus",
	"Rio Vermelho",
	"Morro das Pedras",
	"Pântano do Sul",
	"Costa de Dentro",
	"Lagoa Pequena",
	"Tapera da Base",
	"Caieira da Barra do Sul",
	"José Mendes",
	"Prainha",
	"Serrinha",
	"Carvoeira",
	"Lagoa",
}
