package contract

// Contract version identifiers, matching contract_bindings.contract_version.
const (
	VersionV1 = "v1"
	VersionV2 = "v2"
)

// abiJSONV1 is the ABI of the first deployed crowdfund contract generation.
const abiJSONV1 = `[
  {"type":"function","name":"createCampaign","stateMutability":"nonpayable","inputs":[
    {"name":"category","type":"string"},
    {"name":"metadataURI","type":"string"},
    {"name":"beneficiary","type":"address"},
    {"name":"goal","type":"uint256"},
    {"name":"maxEditions","type":"uint256"},
    {"name":"pricePerEdition","type":"uint256"}],
   "outputs":[{"name":"campaignId","type":"uint256"}]},
  {"type":"function","name":"mintEdition","stateMutability":"payable","inputs":[
    {"name":"campaignId","type":"uint256"},
    {"name":"recipient","type":"address"}],
   "outputs":[{"name":"tokenId","type":"uint256"}]},
  {"type":"function","name":"totalCampaigns","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getCampaign","stateMutability":"view","inputs":[
    {"name":"campaignId","type":"uint256"}],
   "outputs":[
    {"name":"category","type":"string"},
    {"name":"metadataURI","type":"string"},
    {"name":"goal","type":"uint256"},
    {"name":"grossRaised","type":"uint256"},
    {"name":"editionsMinted","type":"uint256"},
    {"name":"maxEditions","type":"uint256"},
    {"name":"pricePerEdition","type":"uint256"},
    {"name":"active","type":"bool"},
    {"name":"closed","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[
    {"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[
    {"name":"owner","type":"address"},
    {"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"editionInfo","stateMutability":"view","inputs":[
    {"name":"tokenId","type":"uint256"}],
   "outputs":[
    {"name":"campaignId","type":"uint256"},
    {"name":"editionNumber","type":"uint256"}]},
  {"type":"function","name":"tokenURI","stateMutability":"view","inputs":[
    {"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"event","name":"CampaignCreated","inputs":[
    {"name":"campaignId","type":"uint256","indexed":true},
    {"name":"beneficiary","type":"address","indexed":true}]},
  {"type":"event","name":"EditionMinted","inputs":[
    {"name":"campaignId","type":"uint256","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"recipient","type":"address","indexed":true},
    {"name":"editionNumber","type":"uint256","indexed":false}]}
]`

/// abiJSONV2 is the second generation: getCampaign gains netRaised and
// editionInfo gains the frozen/soulbound flags. Events are unchanged.
const abiJSONV2 = `[
  {"type":"function","name":"createCampaign","stateMutability":"nonpayable","inputs":[
    {"name":"category","type":"string"},
    {"name":"metadataURI","type":"string"},
    {"name":"beneficiary","type":"address"},
    {"name":"goal","type":"uint256"},
    {"name":"maxEditions","type":"uint256"},
    {"name":"pricePerEdition","type":"uint256"}],
   "outputs":[{"name":"campaignId","type":"uint256"}]},
  {"type":"function","name":"mintEdition","stateMutability":"payable","inputs":[
    {"name":"campaignId","type":"uint256"},
    {"name":"recipient","type":"address"}],
   "outputs":[{"name":"tokenId","type":"uint256"}]},
  {"type":"function","name":"totalCampaigns","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getCampaign","stateMutability":"view","inputs":[
    {"name":"campaignId","type":"uint256"}],
   "outputs":[
    {"name":"category","type":"string"},
    {"name":"metadataURI","type":"string"},
    {"name":"goal","type":"uint256"},
    {"name":"grossRaised","type":"uint256"},
    {"name":"netRaised","type":"uint256"},
    {"name":"editionsMinted","type":"uint256"},
    {"name":"maxEditions","type":"uint256"},
    {"name":"pricePerEdition","type":"uint256"},
    {"name":"active","type":"bool"},
    {"name":"closed","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[
    {"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"tokenOfOwnerByIndex","stateMutability":"view","inputs":[
    {"name":"owner","type":"address"},
    {"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"editionInfo","stateMutability":"view","inputs":[
    {"name":"tokenId","type":"uint256"}],
   "outputs":[
    {"name":"campaignId","type":"uint256"},
    {"name":"editionNumber","type":"uint256"},
    {"name":"frozen","type":"bool"},
    {"name":"soulbound","type":"bool"}]},
  {"type":"function","name":"tokenURI","stateMutability":"view","inputs":[
    {"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"event","name":"CampaignCreated","inputs":[
    {"name":"campaignId","type":"uint256","indexed":true},
    {"name":"beneficiary","type":"address","indexed":true}]},
  {"type":"event","name":"EditionMinted","inputs":[
    {"name":"campaignId","type":"uint256","indexed":true},
    {"name":"tokenId","type":"uint256","indexed":true},
    {"name":"recipient","type":"address","indexed":true},
    {"name":"editionNumber","type":"uint256","indexed":false}]}
]`
