package repository

var schemaStatements = []string{
	`CREATE CONSTRAINT identity_fid IF NOT EXISTS FOR (i:Identity) REQUIRE i.fid IS UNIQUE`,
	`CREATE CONSTRAINT wallet_address IF NOT EXISTS FOR (w:Wallet) REQUIRE w.address IS UNIQUE`,
}

const followersCypher = `
MATCH (f:Identity)-[:FOLLOWS]->(:Identity {fid: $fid})
RETURN DISTINCT f.fid AS fid
`

const followingCypher = `
MATCH (:Identity {fid: $fid})-[:FOLLOWS]->(t:Identity)
RETURN DISTINCT t.fid AS fid
`

const profilesByAddressCypher = `
UNWIND $addresses AS address
MATCH (:Wallet {address: address})<-[:VERIFIED]-(i:Identity)
OPTIONAL MATCH (i)-[:VERIFIED]->(v:Wallet)
WITH address, i, collect(DISTINCT v.address) AS wallets
RETURN address,
	i.fid AS fid,
	i.username AS username,
	i.displayName AS displayName,
	i.qualityScore AS qualityScore,
	i.powerBadge AS powerBadge,
	i.registeredAt AS registeredAt,
	COUNT { (i)<-[:FOLLOWS]-() } AS followerCount,
	COUNT { (i)-[:FOLLOWS]->() } AS followingCount,
	wallets
ORDER BY address, fid
`

const upsertIdentityCypher = `
MERGE (i:Identity {fid: $fid})
SET i += $props
WITH i
FOREACH (address IN $wallets |
	MERGE (w:Wallet {address: address})
	MERGE (i)-[:VERIFIED]->(w)
)
`

const upsertFollowsCypher = `
MERGE (f:Identity {fid: $fid})
WITH f
UNWIND $followees AS followee
MERGE (t:Identity {fid: followee})
MERGE (f)-[:FOLLOWS]->(t)
`
